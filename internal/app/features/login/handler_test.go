package login_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/features/login"
	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auditlog"
	"github.com/bookshelfhq/bookshelf/internal/app/system/auth"
	"github.com/bookshelfhq/bookshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, logger)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "off", Admin: "off"})
	return login.NewHandler(db, tokens, audits, logger), db
}

func TestHandleRegister(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/api/auth/register",
		`{"first_name":"Ada","last_name":"Lovelace","email":"Ada@Example.com","password":"secret-pass"}`)
	rec := testutil.NewRecorder()

	handler.HandleRegister(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token in response")
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized lowercase", resp.User.Email)
	}
	if resp.User.Role != "user" {
		t.Errorf("role = %q, want user (self-registration never grants admin)", resp.User.Role)
	}
}

func TestHandleRegister_Invalid(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing email", `{"first_name":"Ada","password":"secret-pass"}`},
		{"bad email", `{"first_name":"Ada","email":"not-an-email","password":"secret-pass"}`},
		{"short password", `{"first_name":"Ada","email":"ada@example.com","password":"short"}`},
		{"not json", `first_name=Ada`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("POST", "/api/auth/register", tt.body)
			rec := testutil.NewRecorder()
			handler.HandleRegister(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	f.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	req := testutil.NewJSONRequest("POST", "/api/auth/register",
		`{"first_name":"Other","email":"ada@example.com","password":"secret-pass"}`)
	rec := testutil.NewRecorder()

	handler.HandleRegister(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "already exists")
}

func TestHandleLogin(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Fixtures hash the password "password123".
	f := testutil.NewFixtures(t, db)
	f.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	req := testutil.NewJSONRequest("POST", "/api/auth/login",
		`{"email":"ada@example.com","password":"password123"}`)
	rec := testutil.NewRecorder()

	handler.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"token"`)
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	f.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	req := testutil.NewJSONRequest("POST", "/api/auth/login",
		`{"email":"ada@example.com","password":"wrong-password"}`)
	rec := testutil.NewRecorder()

	handler.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleLogin_UnknownUser(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/api/auth/login",
		`{"email":"nobody@example.com","password":"password123"}`)
	rec := testutil.NewRecorder()

	handler.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	// Same message as a wrong password; no account enumeration.
	rec.AssertContains(t, "Invalid email or password")
}

func TestHandleMe(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	req := testutil.NewAuthenticatedRequest("GET", "/api/auth/me", testutil.TestUser{
		ID:    user.ID.Hex(),
		Name:  "Ada Lovelace",
		Email: user.Email,
		Role:  user.Role,
	})
	rec := testutil.NewRecorder()

	handler.HandleMe(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "ada@example.com")
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewRequest("GET", "/api/auth/me")
	rec := testutil.NewRecorder()

	handler.HandleMe(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}
