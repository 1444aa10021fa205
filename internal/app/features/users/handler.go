// internal/app/features/users/handler.go
package users

import (
	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for accounts: self-service profile
// endpoints plus admin user management and the dashboard stats.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Users    *userstore.Store
	Books    *bookstore.Store
	Txns     *transactionstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Users:    userstore.New(db),
		Books:    bookstore.New(db),
		Txns:     transactionstore.New(db),
	}
}
