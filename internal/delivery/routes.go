package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RegisterRoutes mounts the web form, the consult API and generated audio.
// rateLimit is requests per minute per client IP on the consult endpoint,
// zero disables it.
func RegisterRoutes(r chi.Router, page *PageHandler, h *ConsultHandler, rateLimit int) {
	r.Use(middleware.RequestID, middleware.RealIP)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Get("/", page.Index)
		pr.Get("/audio/{name}", h.Audio)

		consult := pr.With()
		if rateLimit > 0 {
			consult = pr.With(httprate.LimitByIP(rateLimit, time.Minute))
		}
		consult.Post("/api/consult", h.Consult)
	})
}
