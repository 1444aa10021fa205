package bookstore_test

import (
	"errors"
	"testing"

	bookstore "github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/system/indexes"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"github.com/bookshelfhq/bookshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	book := models.Book{
		Title:  "  The Left Hand   of Darkness ",
		Author: "Ursula K. Le Guin",
		Genre:  "Science Fiction",
		ISBN:   "978-0441478125",
		Availability: models.Availability{
			TotalCopies: 3,
		},
	}

	created, err := store.Create(ctx, book)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Title != "The Left Hand of Darkness" {
		t.Errorf("expected title whitespace to be normalized, got %q", created.Title)
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if created.Availability.AvailableCopies != 3 {
		t.Errorf("expected all copies available, got %d", created.Availability.AvailableCopies)
	}
	if created.Availability.IssuedCopies != 0 {
		t.Errorf("expected no issued copies, got %d", created.Availability.IssuedCopies)
	}
	if !created.IsActive {
		t.Error("expected new book to be active")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidCopies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Book{
		Title:  "No Copies",
		Author: "Nobody",
	})
	if err == nil {
		t.Fatal("expected error for zero total copies")
	}

	// Counters that do not add up are rejected.
	_, err = store.Create(ctx, models.Book{
		Title:  "Bad Counters",
		Author: "Nobody",
		Availability: models.Availability{
			TotalCopies:     3,
			AvailableCopies: 1,
			IssuedCopies:    1,
		},
	})
	if err == nil {
		t.Fatal("expected error for mismatched counters")
	}
}

func TestStore_Create_DuplicateISBN(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Duplicate detection needs the unique ISBN index.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	first := models.Book{
		Title:        "Dune",
		Author:       "Frank Herbert",
		ISBN:         "978-0441172719",
		Availability: models.Availability{TotalCopies: 1},
	}
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := first
	second.Title = "Dune Messiah"
	_, err := store.Create(ctx, second)
	if !errors.Is(err, bookstore.ErrDuplicateISBN) {
		t.Errorf("expected ErrDuplicateISBN, got %v", err)
	}
}

func TestStore_GetActiveByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 2)
	inactive := fixtures.CreateInactiveBook(ctx, "Withdrawn", "Gone Author")

	got, err := store.GetActiveByID(ctx, active.ID)
	if err != nil {
		t.Fatalf("GetActiveByID failed: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("got title %q, want %q", got.Title, "Dune")
	}

	if _, err := store.GetActiveByID(ctx, inactive.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for inactive book, got %v", err)
	}

	// GetByID still sees the inactive book.
	if _, err := store.GetByID(ctx, inactive.ID); err != nil {
		t.Errorf("GetByID should find inactive book: %v", err)
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 1)
	fixtures.CreateBook(ctx, "Neuromancer", "William Gibson", 1)
	fixtures.CreateInactiveBook(ctx, "Dune Messiah", "Frank Herbert")

	rows, total, err := store.List(ctx, bookstore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 active books, got %d", total)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	rows, total, err = store.List(ctx, bookstore.ListFilter{Search: "herbert"})
	if err != nil {
		t.Fatalf("List with search failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 match for author search, got %d", total)
	}
	if len(rows) == 1 && rows[0].Title != "Dune" {
		t.Errorf("got title %q, want %q", rows[0].Title, "Dune")
	}

	// Regex metacharacters in search input are treated literally.
	_, total, err = store.List(ctx, bookstore.ListFilter{Search: "du(ne"})
	if err != nil {
		t.Fatalf("List with metacharacter search failed: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 matches, got %d", total)
	}
}

func TestStore_List_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		fixtures.CreateBook(ctx, title, "Author", 1)
	}

	rows, total, err := store.List(ctx, bookstore.ListFilter{Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(rows) != 2 {
		t.Errorf("expected page of 2, got %d", len(rows))
	}
}

func TestStore_IssueCopy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	book := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 1)

	if err := store.IssueCopy(ctx, book.ID); err != nil {
		t.Fatalf("IssueCopy failed: %v", err)
	}

	got, err := store.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Availability.AvailableCopies != 0 {
		t.Errorf("expected 0 available, got %d", got.Availability.AvailableCopies)
	}
	if got.Availability.IssuedCopies != 1 {
		t.Errorf("expected 1 issued, got %d", got.Availability.IssuedCopies)
	}

	// Last copy is out; a second issue must fail, not go negative.
	if err := store.IssueCopy(ctx, book.ID); !errors.Is(err, bookstore.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestStore_ReturnCopy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	book := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 2)

	// Nothing issued yet.
	if err := store.ReturnCopy(ctx, book.ID); !errors.Is(err, bookstore.ErrNoIssuedCopies) {
		t.Errorf("expected ErrNoIssuedCopies, got %v", err)
	}

	if err := store.IssueCopy(ctx, book.ID); err != nil {
		t.Fatalf("IssueCopy failed: %v", err)
	}
	if err := store.ReturnCopy(ctx, book.ID); err != nil {
		t.Fatalf("ReturnCopy failed: %v", err)
	}

	got, err := store.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Availability.AvailableCopies != 2 || got.Availability.IssuedCopies != 0 {
		t.Errorf("expected counters restored to 2/0, got %d/%d",
			got.Availability.AvailableCopies, got.Availability.IssuedCopies)
	}
}

func TestStore_Deactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	book := fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 2)
	member := fixtures.CreateMember(ctx, "Ada", "Lovelace", "ada@example.com")

	// Approved, unreturned issue blocks deactivation.
	fixtures.CreateTransaction(ctx, member.ID, book.ID, models.TxTypeIssue, models.TxStatusApproved)
	if err := store.Deactivate(ctx, book.ID); !errors.Is(err, bookstore.ErrActiveIssues) {
		t.Errorf("expected ErrActiveIssues, got %v", err)
	}

	free := fixtures.CreateBook(ctx, "Neuromancer", "William Gibson", 1)
	if err := store.Deactivate(ctx, free.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, err := store.GetActiveByID(ctx, free.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deactivated book to be hidden, got %v", err)
	}

	if err := store.Deactivate(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown id, got %v", err)
	}
}

func TestStore_CountAvailableCopies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBook(ctx, "Dune", "Frank Herbert", 3)
	book := fixtures.CreateBook(ctx, "Neuromancer", "William Gibson", 2)
	fixtures.CreateInactiveBook(ctx, "Withdrawn", "Gone Author")

	if err := store.IssueCopy(ctx, book.ID); err != nil {
		t.Fatalf("IssueCopy failed: %v", err)
	}

	total, err := store.CountAvailableCopies(ctx)
	if err != nil {
		t.Fatalf("CountAvailableCopies failed: %v", err)
	}
	if total != 4 {
		t.Errorf("expected 4 available copies, got %d", total)
	}
}
