package bootstrap

import (
	"testing"

	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/bookshelfhq/bookshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := AppConfig{
		AdminEmail:    "admin@test.com",
		AdminPassword: "bootstrap-secret",
	}

	if err := ensureAdmin(ctx, db, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": "admin@test.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, user.Role)
	}
	if !user.IsActive {
		t.Error("expected bootstrapped admin to be active")
	}
	if user.PasswordHash == "" {
		t.Error("expected password hash to be set")
	}

	users := userstore.New(db)
	if !users.CheckPassword(&user, "bootstrap-secret") {
		t.Error("expected configured password to verify")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	member := fx.CreateMember(ctx, "Grace", "Hopper", "grace@test.com")

	cfg := AppConfig{
		AdminEmail:    "grace@test.com",
		AdminPassword: "unused-for-promotion",
	}

	if err := ensureAdmin(ctx, db, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": member.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %q after promotion, got %q", models.RoleAdmin, user.Role)
	}
	if user.FirstName != "Grace" {
		t.Errorf("expected promotion to preserve name, got %q", user.FirstName)
	}

	// Promotion must not reset the existing password.
	users := userstore.New(db)
	if !users.CheckPassword(&user, "password123") {
		t.Error("expected original password to survive promotion")
	}
}

func TestEnsureAdmin_AlreadyAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Ada", "Lovelace", "ada@test.com")

	cfg := AppConfig{
		AdminEmail:    "ada@test.com",
		AdminPassword: "unused",
	}

	if err := ensureAdmin(ctx, db, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, user.Role)
	}
	if user.UpdatedAt != admin.UpdatedAt {
		t.Error("expected already-admin account to be left untouched")
	}
}
