// internal/app/features/books/routes.go
package books

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog. guard wraps the write routes (sign-in, rate
// limiting).
func Routes(h *Handler, guard ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/all-information", h.ServeAllInformation)
	r.Get("/future-releases", h.ServeFutureReleases)
	r.Get("/lists", h.ServeLists)
	r.Get("/search", h.ServeSearch)
	r.Get("/menus-data", h.ServeMenus)
	r.Get("/artist/{id}", h.ServeArtist)
	r.Get("/{id}", h.ServeBook)

	r.Group(func(pr chi.Router) {
		pr.Use(guard...)
		pr.Post("/", h.HandleCreate)
		pr.Patch("/edit/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
