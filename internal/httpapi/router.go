package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects the handlers and middleware the router serves.
type RouterConfig struct {
	Sessions  *SessionHandler
	Schedules *ScheduleHandler
	Poll      *PollHandler
	// Secret guards the /internal routes; empty disables the check.
	Secret string
	// Middleware wraps every route, outermost first.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the operations API. Health and metrics probes stay
// outside the secret check so orchestrators can reach them.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	internal := router.PathPrefix("/internal").Subrouter()
	if cfg.Secret != "" {
		internal.Use(RequireSchedulerSecret(cfg.Secret, nil))
	}
	if cfg.Sessions != nil {
		internal.HandleFunc("/sessions/{id}/provision", cfg.Sessions.Provision).Methods(http.MethodPost)
		internal.HandleFunc("/sessions/{id}/notify", cfg.Sessions.Notify).Methods(http.MethodPost)
	}
	if cfg.Schedules != nil {
		internal.HandleFunc("/schedules/weekly", cfg.Schedules.MaterializeWeekly).Methods(http.MethodPost)
	}
	if cfg.Poll != nil {
		internal.HandleFunc("/poll", cfg.Poll.Run).Methods(http.MethodPost)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
