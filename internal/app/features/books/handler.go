// internal/app/features/books/handler.go
package books

import (
	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the book catalog.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Books    *bookstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Books:    bookstore.New(db),
	}
}
