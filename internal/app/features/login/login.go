// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/normalize"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /api/auth/login. Failures deliberately return the
// same message whether the account is missing or the password is wrong.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = normalize.Email(req.Email)
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, req.Email)
			httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.Log.Error("login: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not sign in")
		return
	}

	if !user.IsActive {
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserDisabled, req.Email)
		httpjson.Error(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !h.Users.CheckPassword(user, req.Password) {
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, req.Email)
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.FullName(), user.Email, user.Role)
	if err != nil {
		h.Log.Error("login: token issue failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, user.ID)

	httpjson.Write(w, http.StatusOK, authResponse{
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
