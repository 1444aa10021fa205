// internal/app/features/books/create.go
package books

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.uber.org/zap"
)

// bookPayload is the request body for create and update.
type bookPayload struct {
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	Genre         string              `json:"genre"`
	ISBN          string              `json:"isbn"`
	Description   string              `json:"description"`
	Publisher     string              `json:"publisher"`
	PublishedDate *time.Time          `json:"published_date"`
	Pages         int                 `json:"pages"`
	CoverImage    string              `json:"cover_image"`
	TotalCopies   int                 `json:"total_copies"`
	Location      models.BookLocation `json:"location"`
	Tags          []string            `json:"tags"`
	Featured      bool                `json:"featured"`
}

// HandleCreate handles POST /api/books (admin only).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
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
	if req.TotalCopies < 1 {
		httpjson.Error(w, http.StatusBadRequest, "Total copies must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	book, err := h.Books.Create(ctx, models.Book{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		ISBN:          req.ISBN,
		Description:   req.Description,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Pages:         req.Pages,
		CoverImage:    req.CoverImage,
		Availability:  models.Availability{TotalCopies: req.TotalCopies},
		Location:      req.Location,
		Tags:          req.Tags,
		Featured:      req.Featured,
		AddedByID:     &adminID,
	})
	if err != nil {
		if errors.Is(err, bookstore.ErrDuplicateISBN) {
			httpjson.Error(w, http.StatusBadRequest, "A book with this ISBN already exists")
			return
		}
		h.Log.Error("books: create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not create book")
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventBookCreated, adminID, auditlog.Target{
		BookID:  &book.ID,
		Details: map[string]string{"title": book.Title},
	})

	httpjson.Write(w, http.StatusCreated, book)
}
