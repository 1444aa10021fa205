// internal/app/features/transactions/routes.go
package transactions

import (
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the lending workflow routes.
// Typically: r.Mount("/api/transactions", transactions.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.HandleList)
		pr.Get("/{id}", h.HandleGet)
		pr.Post("/request", h.HandleRequestIssue)
		pr.Post("/return", h.HandleRequestReturn)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Put("/{id}/status", h.HandleDecide)
		ar.Put("/{id}/complete", h.HandleComplete)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
