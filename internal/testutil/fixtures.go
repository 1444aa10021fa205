package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active test user with the given role and the
// password "password123".
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    firstName,
		LastName:     lastName,
		FullNameCI:   text.Fold(firstName + " " + lastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		IssuedBooks:  []models.IssuedBook{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleAdmin)
}

// CreateMember creates a regular test user.
func (f *Fixtures) CreateMember(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleUser)
}

// CreateBook creates an active test book with the given number of copies,
// all available.
func (f *Fixtures) CreateBook(ctx context.Context, title, author string, copies int) models.Book {
	f.t.Helper()

	now := time.Now().UTC()
	book := models.Book{
		ID:       primitive.NewObjectID(),
		Title:    title,
		TitleCI:  text.Fold(title),
		Author:   author,
		AuthorCI: text.Fold(author),
		Genre:    "Fiction",
		Availability: models.Availability{
			TotalCopies:     copies,
			AvailableCopies: copies,
			IssuedCopies:    0,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("books").InsertOne(ctx, book)
	if err != nil {
		f.t.Fatalf("failed to create test book: %v", err)
	}

	return book
}

// CreateInactiveBook creates a soft-deleted test book.
func (f *Fixtures) CreateInactiveBook(ctx context.Context, title, author string) models.Book {
	f.t.Helper()

	book := f.CreateBook(ctx, title, author, 1)
	_, err := f.db.Collection("books").UpdateByID(ctx, book.ID,
		map[string]any{"$set": map[string]any{"is_active": false}})
	if err != nil {
		f.t.Fatalf("failed to deactivate test book: %v", err)
	}
	book.IsActive = false
	return book
}

// CreateTransaction inserts a transaction in the given type and status.
func (f *Fixtures) CreateTransaction(ctx context.Context, userID, bookID primitive.ObjectID, txType, status string) models.Transaction {
	f.t.Helper()

	now := time.Now().UTC()
	tx := models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		BookID:      bookID,
		Type:        txType,
		Status:      status,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("transactions").InsertOne(ctx, tx)
	if err != nil {
		f.t.Fatalf("failed to create test transaction: %v", err)
	}

	return tx
}
