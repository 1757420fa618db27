package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/responses"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/config"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/logger"
)

const envHeader = "X-CampusMarket-Env"

// Pinger is the readiness contract backing stores implement.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores answer before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps builds the named dependency set for HealthReady.
func ReadinessDeps(db, redis Pinger) map[string]Pinger {
	return map[string]Pinger{
		"database": db,
		"redis":    redis,
	}
}
