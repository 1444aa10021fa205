// internal/app/features/books/update.go
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

// HandleUpdate handles PUT /api/books/{id} (admin only). Copy counters are
// not editable here; they only move through the lending workflow.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req bookPayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Author == "" {
		httpjson.Error(w, http.StatusBadRequest, "Title and author are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	book, err := h.Books.UpdateFields(ctx, id, bookstore.Update{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		ISBN:          req.ISBN,
		Description:   req.Description,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Pages:         req.Pages,
		CoverImage:    req.CoverImage,
		Location:      req.Location,
		Tags:          req.Tags,
		Featured:      req.Featured,
	})
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, bookstore.ErrDuplicateISBN):
			httpjson.Error(w, http.StatusBadRequest, "A book with this ISBN already exists")
		default:
			h.Log.Error("books: update failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "Could not update book")
		}
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventBookUpdated, adminID, auditlog.Target{
		BookID:  &book.ID,
		Details: map[string]string{"title": book.Title},
	})

	httpjson.Write(w, http.StatusOK, book)
}
