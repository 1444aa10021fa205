// internal/app/features/users/stats.go
package users

import (
	"context"
	"net/http"

	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.uber.org/zap"
)

// dashboardStats is the admin overview payload.
type dashboardStats struct {
	TotalUsers         int64                `json:"total_users"`
	TotalBooks         int64                `json:"total_books"`
	AvailableCopies    int64                `json:"available_copies"`
	TotalTransactions  int64                `json:"total_transactions"`
	PendingRequests    int64                `json:"pending_requests"`
	ActiveIssues       int64                `json:"active_issues"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// HandleDashboardStats handles GET /api/users/dashboard/stats (admin only).
func (h *Handler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var (
		stats dashboardStats
		err   error
	)

	if stats.TotalUsers, err = h.Users.CountActive(ctx); err != nil {
		h.Log.Error("stats: user count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if stats.TotalBooks, err = h.Books.CountActive(ctx); err != nil {
		h.Log.Error("stats: book count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if stats.AvailableCopies, err = h.Books.CountAvailableCopies(ctx); err != nil {
		h.Log.Error("stats: copy count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if stats.TotalTransactions, err = h.Txns.Count(ctx); err != nil {
		h.Log.Error("stats: transaction count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if stats.PendingRequests, err = h.Txns.CountPending(ctx); err != nil {
		h.Log.Error("stats: pending count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if stats.ActiveIssues, err = h.Txns.CountActiveIssues(ctx); err != nil {
		h.Log.Error("stats: active issue count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}

	recent, _, err := h.Txns.List(ctx, transactionstore.ListFilter{Limit: 5})
	if err != nil {
		h.Log.Error("stats: recent transactions failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if err := h.Txns.Resolve(ctx, recent); err != nil {
		h.Log.Error("stats: resolve failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load stats")
		return
	}
	if recent == nil {
		recent = []models.Transaction{}
	}
	stats.RecentTransactions = recent

	httpjson.Write(w, http.StatusOK, stats)
}
