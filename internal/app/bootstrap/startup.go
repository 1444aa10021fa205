// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strings"

	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/normalize"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. For
// Bookshelf that is the admin bootstrap: when admin_email is configured,
// the account is created (or promoted to admin if it already exists) so a
// fresh deployment always has a way in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	return ensureAdmin(ctx, deps.MongoDatabase, appCfg, logger)
}

func ensureAdmin(ctx context.Context, db *mongo.Database, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(db)
	email := normalize.Email(appCfg.AdminEmail)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		_, err := users.UpdateByAdmin(ctx, existing.ID, userstore.AdminUpdate{
			FirstName:   existing.FirstName,
			LastName:    existing.LastName,
			Role:        models.RoleAdmin,
			IsActive:    true,
			PhoneNumber: existing.PhoneNumber,
			Address:     existing.Address,
		})
		if err != nil {
			logger.Error("admin promotion failed", zap.Error(err))
			return err
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		first, last := splitAdminName(email)
		created, err := users.Create(ctx, models.User{
			FirstName: first,
			LastName:  last,
			Email:     email,
			Role:      models.RoleAdmin,
		}, appCfg.AdminPassword)
		if err != nil {
			logger.Error("admin creation failed", zap.Error(err))
			return err
		}
		logger.Info("created initial admin user",
			zap.String("email", email),
			zap.String("user_id", created.ID.Hex()))
		return nil

	default:
		logger.Error("admin lookup failed", zap.Error(err))
		return err
	}
}

// splitAdminName derives a placeholder name from the local part of the
// admin email; the admin can fix it through the profile endpoint.
func splitAdminName(email string) (string, string) {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	if local == "" {
		local = "Admin"
	}
	return local, ""
}
