// internal/app/features/login/handler.go
package login

import (
	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration, login, and the current-user endpoint.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.TokenManager
	AuditLog *auditlog.Logger
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, tokens *auth.TokenManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		AuditLog: audit,
		Users:    userstore.New(db),
	}
}

// authResponse is the JSON body returned by register and login.
type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// userView is the stripped-down account representation the auth endpoints
// return. Password hashes never leave the store.
type userView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
