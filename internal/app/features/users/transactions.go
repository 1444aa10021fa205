// internal/app/features/users/transactions.go
package users

import (
	"context"
	"net/http"

	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/paging"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.uber.org/zap"
)

// txListResponse is the paginated borrowing-history payload.
type txListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	TotalPages   int64                `json:"total_pages"`
}

// HandleMyTransactions handles GET /api/users/transactions: the caller's
// own borrowing history, newest first.
func (h *Handler) HandleMyTransactions(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Txns.List(ctx, transactionstore.ListFilter{
		UserID: &userID,
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
		Skip:   page.Skip(),
		Limit:  int64(page.Limit),
	})
	if err != nil {
		h.Log.Error("users: transaction history failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transactions")
		return
	}
	if err := h.Txns.Resolve(ctx, rows); err != nil {
		h.Log.Error("users: resolve failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transactions")
		return
	}
	if rows == nil {
		rows = []models.Transaction{}
	}

	httpjson.Write(w, http.StatusOK, txListResponse{
		Transactions: rows,
		Total:        total,
		Page:         page.Page,
		TotalPages:   page.TotalPages(total),
	})
}
