// internal/app/features/books/delete.go
package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/books/{id} (admin only). Deletion is a
// soft delete and is refused while copies of the book are still out.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "Book not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Books.Deactivate(ctx, id); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, bookstore.ErrActiveIssues):
			httpjson.Error(w, http.StatusBadRequest, "Cannot delete a book with active issues")
		default:
			h.Log.Error("books: delete failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "Could not delete book")
		}
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventBookDeactivated, adminID, auditlog.Target{
		BookID: &id,
	})

	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Book deleted"})
}
