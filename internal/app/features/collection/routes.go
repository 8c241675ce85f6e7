// internal/app/features/collection/routes.go
package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, guard ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Views (public, keyed by user id)
	r.Get("/wishlist/{userId}", h.ServeWishlist)
	r.Get("/readlist/{userId}", h.ServeReadlist)
	r.Get("/my-releases/{userId}", h.ServeMyReleases)
	r.Get("/stats/{userId}", h.ServeStats)
	r.Get("/{userId}", h.ServeCollection)

	r.Group(func(pr chi.Router) {
		pr.Use(guard...)
		pr.Post("/add", h.HandleAdd)
		pr.Post("/edit", h.HandleEdit)
		pr.Delete("/wishlist/{userId}/{bookId}", h.HandleRemoveWishlist)
	})

	return r
}
