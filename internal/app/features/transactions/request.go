// internal/app/features/transactions/request.go
package transactions

import (
	"context"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type requestPayload struct {
	BookID string `json:"book_id"`
	Notes  string `json:"notes"`
}

// HandleRequestIssue handles POST /api/transactions/request. The caller asks
// to borrow a book; an admin approves or rejects it later.
func (h *Handler) HandleRequestIssue(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req requestPayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tx, err := h.Lending.RequestIssue(ctx, userID, bookID, req.Notes)
	if err != nil {
		h.writeWorkflowError(w, "request issue", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, tx)
}

// HandleRequestReturn handles POST /api/transactions/return. The caller asks
// to give back a book they currently hold.
func (h *Handler) HandleRequestReturn(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req requestPayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tx, err := h.Lending.RequestReturn(ctx, userID, bookID, req.Notes)
	if err != nil {
		h.writeWorkflowError(w, "request return", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, tx)
}
