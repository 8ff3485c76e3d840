package controllers

import (
	"context"
	"net/http"

	"github.com/avolkov/orderflow-backend/api/responses"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/redis"
)

// Pinger is implemented by optional dependencies such as the pubsub client.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Orderflow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency. Nil dependencies are treated as
// not configured and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, pubsubP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Orderflow-Env", cfg.App.Env)

		status := map[string]string{}
		healthy := true
		check := func(name string, ping func(context.Context) error) {
			if ping == nil {
				status[name] = "skipped"
				return
			}
			if err := ping(r.Context()); err != nil {
				healthy = false
				status[name] = "down"
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "health.dependency_down", err)
				}
				return
			}
			status[name] = "ok"
		}

		if dbP != nil {
			check("database", dbP.Ping)
		} else {
			check("database", nil)
		}
		if redisP != nil {
			check("redis", redisP.Ping)
		} else {
			check("redis", nil)
		}
		if pubsubP != nil {
			check("pubsub", pubsubP.Ping)
		} else {
			check("pubsub", nil)
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": status})
	}
}
