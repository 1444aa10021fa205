// internal/app/features/transactions/complete.go
package transactions

import (
	"context"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/authz"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"github.com/bookshelfhq/bookshelf/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleComplete handles PUT /api/transactions/{id}/complete (admin only).
// The id names an approved return transaction; completion puts the copy
// back on the shelf and settles any overdue fine on the paired issue.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tx, err := h.Lending.CompleteReturn(ctx, id, adminID)
	if err != nil {
		h.writeWorkflowError(w, "complete return", err)
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventReturnCompleted, adminID, auditlog.Target{
		UserID:        &tx.UserID,
		BookID:        &tx.BookID,
		TransactionID: &tx.ID,
	})

	httpjson.Write(w, http.StatusOK, tx)
}
