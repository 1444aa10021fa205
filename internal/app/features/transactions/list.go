// internal/app/features/transactions/list.go
package transactions

import (
	"context"
	"errors"
	"net/http"

	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/paging"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// listResponse is the paginated transaction payload.
type listResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	TotalPages   int64                `json:"total_pages"`
}

// HandleList handles GET /api/transactions. Admins see every transaction
// and may filter by status, type, and user; regular users only ever see
// their own.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	page := paging.Parse(r)
	q := r.URL.Query()

	filter := transactionstore.ListFilter{
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Skip:   page.Skip(),
		Limit:  int64(page.Limit),
	}

	if authz.IsAdmin(r) {
		if s := q.Get("user_id"); s != "" {
			uid, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "Invalid user id")
				return
			}
			filter.UserID = &uid
		}
	} else {
		filter.UserID = &userID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Txns.List(ctx, filter)
	if err != nil {
		h.Log.Error("transactions: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transactions")
		return
	}
	if err := h.Txns.Resolve(ctx, rows); err != nil {
		h.Log.Error("transactions: resolve failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transactions")
		return
	}
	if rows == nil {
		rows = []models.Transaction{}
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Transactions: rows,
		Total:        total,
		Page:         page.Page,
		TotalPages:   page.TotalPages(total),
	})
}

// HandleGet handles GET /api/transactions/{id}. Owners and admins only.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "Transaction not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tx, err := h.Txns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.Log.Error("transactions: get failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transaction")
		return
	}

	if !authz.CanViewUser(r, tx.UserID) {
		httpjson.Error(w, http.StatusForbidden, "Not authorized")
		return
	}

	rows := []models.Transaction{*tx}
	if err := h.Txns.Resolve(ctx, rows); err != nil {
		h.Log.Error("transactions: resolve failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not load transaction")
		return
	}

	httpjson.Write(w, http.StatusOK, rows[0])
}
