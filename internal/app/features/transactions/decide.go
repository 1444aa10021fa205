// internal/app/features/transactions/decide.go
package transactions

import (
	"context"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type decidePayload struct {
	Status string `json:"status"` // approved | rejected
	Notes  string `json:"notes"`
}

// HandleDecide handles PUT /api/transactions/{id}/status (admin only).
// Approving an issue moves the copy; approving a return makes it eligible
// for completion.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req decidePayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.TxStatusApproved && req.Status != models.TxStatusRejected {
		httpjson.Error(w, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tx, err := h.Lending.Decide(ctx, id, req.Status, adminID, req.Notes)
	if err != nil {
		h.writeWorkflowError(w, "decide", err)
		return
	}

	event := audit.EventTransactionApproved
	if tx.Status == models.TxStatusRejected {
		event = audit.EventTransactionRejected
	}
	h.AuditLog.AdminAction(ctx, r, event, adminID, auditlog.Target{
		UserID:        &tx.UserID,
		BookID:        &tx.BookID,
		TransactionID: &tx.ID,
	})

	httpjson.Write(w, http.StatusOK, tx)
}
