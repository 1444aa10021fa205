// internal/app/features/users/list.go
package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/paging"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// listResponse is the paginated user payload for admin listing.
type listResponse struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int64         `json:"total_pages"`
}

// HandleList handles GET /api/users (admin only). An optional ?search= term
// matches name and email.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Users.List(ctx, userstore.ListFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   page.Skip(),
		Limit:  int64(page.Limit),
	})
	if err != nil {
		h.Log.Error("users: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load users")
		return
	}
	if rows == nil {
		rows = []models.User{}
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Users:      rows,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	})
}

// HandleGet handles GET /api/users/{id}. Admins may look at anyone; a
// regular user only at themselves.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}

	if !authz.CanViewUser(r, id) {
		httpjson.Error(w, http.StatusForbidden, "Not authorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("users: get failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load user")
		return
	}

	httpjson.Write(w, http.StatusOK, user)
}
