// internal/app/features/users/manage.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type adminUpdatePayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// HandleAdminUpdate handles PUT /api/users/{id} (admin only). Role changes
// and re-activation happen here.
func (h *Handler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}

	var req adminUpdatePayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		httpjson.Error(w, http.StatusBadRequest, "Role must be user or admin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.UpdateByAdmin(ctx, id, userstore.AdminUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		IsActive:    req.IsActive,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("users: admin update failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not update user")
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventUserUpdated, adminID, auditlog.Target{
		UserID: &user.ID,
	})

	httpjson.Write(w, http.StatusOK, user)
}

// HandleDelete handles DELETE /api/users/{id} (admin only). Deletion is a
// soft deactivate and is refused while the user still holds books.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if id == adminID {
		httpjson.Error(w, http.StatusBadRequest, "Cannot deactivate your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, userstore.ErrActiveIssues):
			httpjson.Error(w, http.StatusBadRequest, "Cannot delete a user with books still issued")
		default:
			h.Log.Error("users: delete failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "Could not delete user")
		}
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventUserDeactivated, adminID, auditlog.Target{
		UserID: &id,
	})

	httpjson.Write(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
