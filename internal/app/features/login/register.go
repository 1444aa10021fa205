// internal/app/features/login/register.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/normalize"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.uber.org/zap"
)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

const minPasswordLength = 8

// HandleRegister handles POST /api/auth/register. New accounts always get
// the regular user role; admins are promoted by another admin.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = normalize.Email(req.Email)
	if req.FirstName == "" || req.Email == "" {
		httpjson.Error(w, http.StatusBadRequest, "First name and email are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		httpjson.Error(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		httpjson.Error(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.RoleUser,
	}, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusBadRequest, "An account with this email already exists")
			return
		}
		h.Log.Error("register: create user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.FullName(), user.Email, user.Role)
	if err != nil {
		h.Log.Error("register: token issue failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	h.AuditLog.UserRegistered(ctx, r, user.ID)

	httpjson.Write(w, http.StatusCreated, authResponse{
		Token: token,
		User: userView{
			ID:        user.ID.Hex(),
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Role:      user.Role,
		},
	})
}
