package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/indexes"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/bookshelfhq/bookshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		Email:     " Ada@Example.COM ",
	}, "s3cret-pass")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FirstName != "Ada" {
		t.Errorf("expected first name to be trimmed, got %q", created.FirstName)
	}
	if created.Email != "ada@example.com" {
		t.Errorf("expected email to be normalized, got %q", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Errorf("expected default role %q, got %q", models.RoleUser, created.Role)
	}
	if !created.IsActive {
		t.Error("expected new user to be active")
	}
	if created.PasswordHash == "" || created.PasswordHash == "s3cret-pass" {
		t.Error("expected password to be stored hashed")
	}
	if created.IssuedBooks == nil {
		t.Error("expected issued_books to be initialized")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FirstName: "Bad",
		LastName:  "Role",
		Email:     "bad@example.com",
		Role:      "librarian",
	}, "password123")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	u := models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if _, err := store.Create(ctx, u, "password123"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Same address with different casing collides on the normalized email.
	u.Email = "ADA@example.com"
	_, err := store.Create(ctx, u, "password123")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	got, err := store.GetByEmail(ctx, "  ADA@Example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Errorf("got first name %q, want %q", got.FirstName, "Ada")
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_CheckPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}, "correct horse battery")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !store.CheckPassword(&created, "correct horse battery") {
		t.Error("expected correct password to verify")
	}
	if store.CheckPassword(&created, "wrong password") {
		t.Error("expected wrong password to fail")
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")
	fixtures.CreateMember(ctx, "Grace", "Hopper", "grace@example.com")
	fixtures.CreateAdmin(ctx, "Alan", "Turing", "alan@example.com")

	rows, total, err := store.List(ctx, userstore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 users, got %d", total)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}

	rows, total, err = store.List(ctx, userstore.ListFilter{Search: "hopper"})
	if err != nil {
		t.Fatalf("List with search failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 match, got %d", total)
	}
	if len(rows) == 1 && rows[0].Email != "grace@example.com" {
		t.Errorf("got email %q, want %q", rows[0].Email, "grace@example.com")
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	got, err := store.UpdateProfile(ctx, member.ID, userstore.ProfileUpdate{
		FirstName:   "Augusta",
		LastName:    "King",
		PhoneNumber: "555-0100",
		Address:     "12 St James Square",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if got.FirstName != "Augusta" || got.LastName != "King" {
		t.Errorf("got name %q %q, want Augusta King", got.FirstName, got.LastName)
	}
	if got.PhoneNumber != "555-0100" {
		t.Errorf("got phone %q", got.PhoneNumber)
	}
	// Self-service edits never touch email or role.
	if got.Email != "ada@example.com" {
		t.Errorf("expected email unchanged, got %q", got.Email)
	}
	if got.Role != models.RoleUser {
		t.Errorf("expected role unchanged, got %q", got.Role)
	}
}

func TestStore_UpdateByAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	got, err := store.UpdateByAdmin(ctx, member.ID, userstore.AdminUpdate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleAdmin,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("UpdateByAdmin failed: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, got.Role)
	}

	_, err = store.UpdateByAdmin(ctx, member.ID, userstore.AdminUpdate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "librarian",
		IsActive:  true,
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestStore_Deactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")
	book := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 1)

	// An approved, unreturned issue blocks deactivation.
	fixtures.CreateTransaction(ctx, member.ID, book.ID, models.TxTypeIssue, models.TxStatusApproved)
	if err := store.Deactivate(ctx, member.ID); !errors.Is(err, userstore.ErrActiveIssues) {
		t.Errorf("expected ErrActiveIssues, got %v", err)
	}

	free := fixtures.CreateMember(ctx, "Grace", "Hopper", "grace@example.com")
	if err := store.Deactivate(ctx, free.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	got, err := store.GetByID(ctx, free.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.IsActive {
		t.Error("expected user to be deactivated")
	}

	if err := store.Deactivate(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown id, got %v", err)
	}
}

func TestStore_RecordIssueAndReturn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")
	book := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 1)

	issuedAt := time.Now().UTC().Truncate(time.Millisecond)
	dueDate := issuedAt.AddDate(0, 0, 14)

	if err := store.RecordIssue(ctx, member.ID, book.ID, issuedAt, dueDate); err != nil {
		t.Fatalf("RecordIssue failed: %v", err)
	}

	got, err := store.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.IssuedBooks) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(got.IssuedBooks))
	}
	entry := got.IssuedBooks[0]
	if entry.BookID != book.ID {
		t.Errorf("got book_id %s, want %s", entry.BookID.Hex(), book.ID.Hex())
	}
	if entry.Returned {
		t.Error("expected entry to be unreturned")
	}
	if !entry.DueDate.Equal(dueDate) {
		t.Errorf("got due date %v, want %v", entry.DueDate, dueDate)
	}

	returnedAt := issuedAt.AddDate(0, 0, 7)
	if err := store.RecordReturn(ctx, member.ID, book.ID, returnedAt); err != nil {
		t.Fatalf("RecordReturn failed: %v", err)
	}

	got, err = store.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IssuedBooks[0].Returned {
		t.Error("expected entry to be marked returned")
	}
	if got.IssuedBooks[0].ReturnedAt == nil {
		t.Error("expected returned_at to be set")
	}

	// No unreturned entry left for the book.
	if err := store.RecordReturn(ctx, member.ID, book.ID, returnedAt); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_CountActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")
	grace := fixtures.CreateMember(ctx, "Grace", "Hopper", "grace@example.com")
	if err := store.Deactivate(ctx, grace.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	total, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 active user, got %d", total)
	}
}
