package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", h.Snapshot)
		r.Get("/summary", h.Summary)
		r.Get("/channels", h.Channels)
		r.Get("/stores", h.TopStores)
		r.Get("/trend", h.Trend)
		r.Get("/recent", h.Recent)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
