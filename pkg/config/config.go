package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Importer  ImporterConfig
	Assets    AssetsConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Outbox    OutboxConfig
	SMTP      SMTPConfig
	Reporting ReportingConfig
	Features  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERFLOW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORDERFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERFLOW_DB_DSN"`
	Driver string `envconfig:"ORDERFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERFLOW_DB_USER"`
	LegacyPassword string `envconfig:"ORDERFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERFLOW_REDIS_URL"`
	Address      string        `envconfig:"ORDERFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ORDERFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ORDERFLOW_JWT_ISSUER" default:"orderflow"`
	ExpirationMinutes int    `envconfig:"ORDERFLOW_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	MinLength        int `envconfig:"ORDERFLOW_PASSWORD_MIN_LENGTH" default:"8"`
	ArgonMemoryKB    int `envconfig:"ORDERFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ORDERFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ORDERFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ORDERFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ORDERFLOW_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ORDERFLOW_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ORDERFLOW_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ORDERFLOW_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ORDERFLOW_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ORDERFLOW_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ORDERFLOW_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ImportWindow       time.Duration `envconfig:"ORDERFLOW_RATE_LIMIT_IMPORT_WINDOW" default:"24h"`
	ImportUserLimit    int           `envconfig:"ORDERFLOW_RATE_LIMIT_IMPORT_USER_LIMIT" default:"10"`
}

type ImporterConfig struct {
	FetchTimeout time.Duration `envconfig:"ORDERFLOW_IMPORT_FETCH_TIMEOUT" default:"30s"`
	MaxBodyBytes int64         `envconfig:"ORDERFLOW_IMPORT_MAX_BODY_BYTES" default:"10485760"`
}

type AssetsConfig struct {
	BaseURL string `envconfig:"ORDERFLOW_ASSETS_BASE_URL"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ORDERFLOW_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"ORDERFLOW_PUBSUB_NOTIFICATION_TOPIC" default:"of-notification-events"`
	NotificationSubscription string `envconfig:"ORDERFLOW_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"of-notification-worker"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ORDERFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ORDERFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ORDERFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SMTPConfig struct {
	Host        string `envconfig:"ORDERFLOW_SMTP_HOST"`
	Port        int    `envconfig:"ORDERFLOW_SMTP_PORT" default:"587"`
	Username    string `envconfig:"ORDERFLOW_SMTP_USERNAME"`
	Password    string `envconfig:"ORDERFLOW_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"ORDERFLOW_SMTP_FROM_EMAIL"`
}

type ReportingConfig struct {
	Endpoint string        `envconfig:"ORDERFLOW_REPORTING_ENDPOINT"`
	Token    string        `envconfig:"ORDERFLOW_REPORTING_TOKEN"`
	Timeout  time.Duration `envconfig:"ORDERFLOW_REPORTING_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERFLOW_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
