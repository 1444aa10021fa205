// internal/app/features/books/get.go
package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleGet handles GET /api/books/{id}. Soft-deleted books are invisible
// here; historical transactions resolve them through their own lookups.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "Book not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Books.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Book not found")
			return
		}
		h.Log.Error("books: get failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load book")
		return
	}

	httpjson.Write(w, http.StatusOK, book)
}
