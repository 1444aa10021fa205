// internal/app/features/transactions/handler.go
package transactions

import (
	"errors"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/lending"
	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the lending workflow endpoints.
// All state transitions go through the lending service; the store is used
// directly only for reads.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Lending  *lending.Service
	Txns     *transactionstore.Store
}

func NewHandler(db *mongo.Database, svc *lending.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Lending:  svc,
		Txns:     transactionstore.New(db),
	}
}

// writeWorkflowError maps lending failures onto HTTP statuses. Anything not
// in the taxonomy is a server error and gets logged.
func (h *Handler) writeWorkflowError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, lending.ErrTransactionNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lending.ErrNotAuthorized):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, lending.ErrBookUnavailable),
		errors.Is(err, lending.ErrDuplicateIssue),
		errors.Is(err, lending.ErrNoActiveIssue),
		errors.Is(err, lending.ErrTransactionNotPending),
		errors.Is(err, lending.ErrInvalidTransactionState),
		errors.Is(err, lending.ErrNoIssuedCopies),
		errors.Is(err, lending.ErrActiveIssue):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("transactions: "+op+" failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Something went wrong")
	}
}
