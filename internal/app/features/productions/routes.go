// internal/app/features/productions/routes.go
package productions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, guard ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeProduction)

	r.Group(func(pr chi.Router) {
		pr.Use(guard...)
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleWatch)
	})

	return r
}
