// internal/app/features/books/list.go
package books

import (
	"context"
	"net/http"

	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/paging"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.uber.org/zap"
)

// listResponse is the paginated catalog payload.
type listResponse struct {
	Books      []models.Book `json:"books"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int64         `json:"total_pages"`
}

// HandleList handles GET /api/books and GET /api/books/search. The catalog
// is public: browsing requires no account. An optional ?search= term matches
// title, author, genre, and description case-insensitively.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Books.List(ctx, bookstore.ListFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   page.Skip(),
		Limit:  int64(page.Limit),
	})
	if err != nil {
		h.Log.Error("books: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load books")
		return
	}
	if rows == nil {
		rows = []models.Book{}
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Books:      rows,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	})
}
