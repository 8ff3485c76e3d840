package config

// EnvPrefix is intentionally empty: every field names its variable in full so
// grepping for ORDERFLOW_ finds the complete surface.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "ORDERFLOW_APP_ENV"
	EnvDBDSN  = "ORDERFLOW_DB_DSN"
	EnvDBHost = "ORDERFLOW_DB_HOST"
	EnvDBUser = "ORDERFLOW_DB_USER"
	EnvDBName = "ORDERFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
