// internal/app/features/login/me.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleMe handles GET /api/auth/me and returns the full account document
// for the authenticated caller, issued books included.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("me: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load account")
		return
	}

	httpjson.Write(w, http.StatusOK, user)
}
