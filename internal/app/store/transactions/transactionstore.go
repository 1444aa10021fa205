package transactionstore

import (
	"context"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/system/htmlsanitize"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the transactions collection. Status transitions happen through
// the narrow Set* methods so every update is a single conditional document
// write; the lending workflow owns the sequencing.
type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
	books *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("transactions"),
		users: db.Collection("users"),
		books: db.Collection("books"),
	}
}

// GetByID loads a transaction by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new pending transaction.
func (s *Store) Create(ctx context.Context, userID, bookID primitive.ObjectID, txType, notes string) (models.Transaction, error) {
	now := time.Now()
	t := models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		BookID:      bookID,
		Type:        txType,
		Status:      models.TxStatusPending,
		RequestedAt: now,
		Notes:       htmlsanitize.Sanitize(notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// FindActiveIssue returns the approved, unreturned issue transaction for the
// (user, book) pair, or mongo.ErrNoDocuments. The lending workflow keeps at
// most one such document per pair.
func (s *Store) FindActiveIssue(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Transaction, error) {
	var t models.Transaction
	err := s.c.FindOne(ctx, bson.M{
		"user_id":     userID,
		"book_id":     bookID,
		"type":        models.TxTypeIssue,
		"status":      models.TxStatusApproved,
		"returned_at": bson.M{"$exists": false},
	}).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Decision carries the fields Decide stamps onto a pending transaction.
type Decision struct {
	Status     string // approved | rejected
	ApprovedBy primitive.ObjectID
	Notes      string // replaces notes when non-empty
	IssuedAt   *time.Time
	DueDate    *time.Time
}

// ApplyDecision moves a pending transaction to approved or rejected. The
// filter requires status=pending, so a second decision on the same document
// matches nothing and returns mongo.ErrNoDocuments; callers translate that
// into their not-pending error after re-reading the document.
func (s *Store) ApplyDecision(ctx context.Context, id primitive.ObjectID, d Decision) (*models.Transaction, error) {
	set := bson.M{
		"status":         d.Status,
		"approved_by_id": d.ApprovedBy,
		"updated_at":     time.Now(),
	}
	if d.Notes != "" {
		set["notes"] = htmlsanitize.Sanitize(d.Notes)
	}
	if d.IssuedAt != nil {
		set["issued_at"] = d.IssuedAt
	}
	if d.DueDate != nil {
		set["due_date"] = d.DueDate
	}

	var t models.Transaction
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.TxStatusPending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetCompleted moves an approved return transaction to completed and stamps
// its returned_at. The status filter makes completion single-shot.
func (s *Store) SetCompleted(ctx context.Context, id primitive.ObjectID, returnedAt time.Time) (*models.Transaction, error) {
	var t models.Transaction
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"_id":    id,
			"type":   models.TxTypeReturn,
			"status": models.TxStatusApproved,
		},
		bson.M{"$set": bson.M{
			"status":      models.TxStatusCompleted,
			"returned_at": returnedAt,
			"updated_at":  time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CloseIssue stamps returned_at on the paired issue transaction, ending the
// active issue, and records any overdue fine computed at completion time.
func (s *Store) CloseIssue(ctx context.Context, id primitive.ObjectID, returnedAt time.Time, fineAmount float64, isOverdue bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"returned_at": returnedAt,
			"fine_amount": fineAmount,
			"is_overdue":  isOverdue,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a transaction permanently. The caller checks the active
// issue guard first.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter controls List queries.
type ListFilter struct {
	UserID *primitive.ObjectID // restrict to one user's transactions
	Status string
	Type   string
	Skip   int64
	Limit  int64
}

// List returns transactions newest first with the total match count.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Transaction, int64, error) {
	query := bson.M{}
	if f.UserID != nil {
		query["user_id"] = *f.UserID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Type != "" {
		query["type"] = f.Type
	}

	total, err := s.c.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(f.Skip)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Transaction
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountPending counts pending requests, for the admin dashboard.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.TxStatusPending})
}

// CountActiveIssues counts approved, unreturned issues across all users.
func (s *Store) CountActiveIssues(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"type":        models.TxTypeIssue,
		"status":      models.TxStatusApproved,
		"returned_at": bson.M{"$exists": false},
	})
}

// Count counts all transactions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Resolve attaches user and book display fields to the given transactions.
// It batches the two lookups instead of resolving row by row.
func (s *Store) Resolve(ctx context.Context, rows []models.Transaction) error {
	if len(rows) == 0 {
		return nil
	}

	userIDs := make([]primitive.ObjectID, 0, len(rows))
	bookIDs := make([]primitive.ObjectID, 0, len(rows))
	seenUsers := make(map[primitive.ObjectID]bool, len(rows))
	seenBooks := make(map[primitive.ObjectID]bool, len(rows))
	for _, t := range rows {
		if !seenUsers[t.UserID] {
			seenUsers[t.UserID] = true
			userIDs = append(userIDs, t.UserID)
		}
		if !seenBooks[t.BookID] {
			seenBooks[t.BookID] = true
			bookIDs = append(bookIDs, t.BookID)
		}
	}

	users := make(map[primitive.ObjectID]models.TransactionUserRef, len(userIDs))
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return err
	}
	var userRows []models.User
	if err := cur.All(ctx, &userRows); err != nil {
		return err
	}
	for _, u := range userRows {
		users[u.ID] = models.TransactionUserRef{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		}
	}

	books := make(map[primitive.ObjectID]models.TransactionBookRef, len(bookIDs))
	cur, err = s.books.Find(ctx, bson.M{"_id": bson.M{"$in": bookIDs}})
	if err != nil {
		return err
	}
	var bookRows []models.Book
	if err := cur.All(ctx, &bookRows); err != nil {
		return err
	}
	for _, b := range bookRows {
		books[b.ID] = models.TransactionBookRef{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
		}
	}

	for i := range rows {
		if ref, ok := users[rows[i].UserID]; ok {
			u := ref
			rows[i].User = &u
		}
		if ref, ok := books[rows[i].BookID]; ok {
			b := ref
			rows[i].Book = &b
		}
	}
	return nil
}
