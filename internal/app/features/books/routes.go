// internal/app/features/books/routes.go
package books

import (
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog routes. Typically: r.Mount("/api/books", books.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public catalog
	r.Get("/", h.HandleList)
	r.Get("/search", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	// Admin catalog management
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
