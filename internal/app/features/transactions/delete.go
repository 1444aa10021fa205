// internal/app/features/transactions/delete.go
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

// HandleDelete handles DELETE /api/transactions/{id} (admin only). Active
// issues are protected; everything else is removed permanently.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Lending.DeleteTransaction(ctx, id, adminID); err != nil {
		h.writeWorkflowError(w, "delete", err)
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventTransactionDeleted, adminID, auditlog.Target{
		TransactionID: &id,
	})

	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
