// internal/app/features/users/routes.go
package users

import (
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account routes. Typically: r.Mount("/api/users", users.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Self-service
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/profile", h.HandleGetProfile)
		pr.Put("/profile", h.HandleUpdateProfile)
		pr.Get("/transactions", h.HandleMyTransactions)
		pr.Get("/{id}", h.HandleGet) // role-aware inside
	})

	// Admin user management
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Get("/", h.HandleList)
		ar.Put("/{id}", h.HandleAdminUpdate)
		ar.Delete("/{id}", h.HandleDelete)
		ar.Get("/dashboard/stats", h.HandleDashboardStats)
	})

	return r
}
