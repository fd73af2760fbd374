package handlers

import (
	"context"
	"net/http"
)

// ReadinessChecker reports whether a backing store can serve requests.
// *database.Queries satisfies it.
type ReadinessChecker interface {
	IsDatabaseRunning(ctx context.Context) (bool, error)
}

// HandleHealth godoc
//
//	@Summary		Health (liveness) Check
//	@Description	Check if the HTTP service is alive and responding.
//	@Tags			Common
//	@Produce		plain
//
//	@Success		200	{string}	string	"OK"
//
//	@Router			/health/live [get]
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleReadiness godoc
//
//	@Summary		Readiness Check
//	@Description	Checks if the service is ready to accept traffic (includes database connectivity when the postgres store is used)
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	map[string]string	"status ready"
//	@Failure		503	{object}	map[string]string	"status not ready"
//	@Router			/ready [get]
func HandleReadiness(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// the in-memory store has nothing to check
		if checker != nil {
			if _, err := checker.IsDatabaseRunning(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
