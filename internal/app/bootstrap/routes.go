// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	booksfeature "github.com/bookshelfhq/bookshelf/internal/app/features/books"
	healthfeature "github.com/bookshelfhq/bookshelf/internal/app/features/health"
	loginfeature "github.com/bookshelfhq/bookshelf/internal/app/features/login"
	transactionsfeature "github.com/bookshelfhq/bookshelf/internal/app/features/transactions"
	usersfeature "github.com/bookshelfhq/bookshelf/internal/app/features/users"
	"github.com/bookshelfhq/bookshelf/internal/app/lending"
	auditstore "github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	transactionstore "github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Bookshelf wires the token middleware,
// constructs the lending service, and mounts the JSON API feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	audits := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	lendingSvc := lending.New(db,
		bookstore.New(db),
		userstore.New(db),
		transactionstore.New(db),
		logger,
		lending.Config{
			LoanPeriodDays: appCfg.LoanPeriodDays,
			FinePerDay:     appCfg.FinePerDay,
		},
	)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token into a SessionUser
	// so handlers can use auth.CurrentUser(r). Anonymous requests pass
	// through; the per-route guards decide what needs a login.
	r.Use(tokens.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, tokens, audits, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	// Book catalog
	booksHandler := booksfeature.NewHandler(db, audits, logger)
	r.Mount("/api/books", booksfeature.Routes(booksHandler))

	// Lending workflow
	txHandler := transactionsfeature.NewHandler(db, lendingSvc, audits, logger)
	r.Mount("/api/transactions", transactionsfeature.Routes(txHandler))

	// Accounts and admin dashboard
	usersHandler := usersfeature.NewHandler(db, audits, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	return r, nil
}
