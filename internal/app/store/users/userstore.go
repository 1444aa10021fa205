package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/system/normalize"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with
	// an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrActiveIssues is returned by Deactivate while the user still holds
	// unreturned books.
	ErrActiveIssues = errors.New("user has active book issues")

	errBadRole = errors.New(`role must be "user"|"admin"`)
)

// Store wraps the users collection.
type Store struct {
	c   *mongo.Collection
	txc *mongo.Collection // transactions, read for the deactivate guard
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("users"),
		txc: db.Collection("transactions"),
	}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields and hashing the given
// plaintext password. Role defaults to "user".
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = text.Fold(u.FullName())
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	switch u.Role {
	case models.RoleUser, models.RoleAdmin:
		// ok
	default:
		return models.User{}, errBadRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	u.IsActive = true
	if u.IssuedBooks == nil {
		u.IssuedBooks = []models.IssuedBook{}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (s *Store) CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ListFilter controls List queries.
type ListFilter struct {
	Search string // case-insensitive match on name/email
	Skip   int64
	Limit  int64
}

// List returns users newest first with the total match count.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.User, int64, error) {
	query := bson.M{}
	if f.Search != "" {
		re := primitive.Regex{Pattern: f.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
		}
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

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ProfileUpdate holds the fields a user can change on their own account.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// UpdateProfile applies a self-service profile edit.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	first := normalize.Name(upd.FirstName)
	last := normalize.Name(upd.LastName)
	set := bson.M{
		"first_name":   first,
		"last_name":    last,
		"full_name_ci": text.Fold(first + " " + last),
		"phone_number": upd.PhoneNumber,
		"address":      upd.Address,
		"updated_at":   time.Now(),
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AdminUpdate holds the fields an admin can change on any account.
type AdminUpdate struct {
	FirstName   string
	LastName    string
	Role        string
	IsActive    bool
	PhoneNumber string
	Address     string
}

// UpdateByAdmin applies an admin edit, including role and active changes.
func (s *Store) UpdateByAdmin(ctx context.Context, id primitive.ObjectID, upd AdminUpdate) (*models.User, error) {
	switch upd.Role {
	case models.RoleUser, models.RoleAdmin:
		// ok
	default:
		return nil, errBadRole
	}

	first := normalize.Name(upd.FirstName)
	last := normalize.Name(upd.LastName)
	set := bson.M{
		"first_name":   first,
		"last_name":    last,
		"full_name_ci": text.Fold(first + " " + last),
		"role":         upd.Role,
		"is_active":    upd.IsActive,
		"phone_number": upd.PhoneNumber,
		"address":      upd.Address,
		"updated_at":   time.Now(),
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Deactivate soft-deletes a user account. It is blocked while the user holds
// approved, unreturned issues.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	active, err := s.txc.CountDocuments(ctx, bson.M{
		"user_id":     id,
		"type":        models.TxTypeIssue,
		"status":      models.TxStatusApproved,
		"returned_at": bson.M{"$exists": false},
	})
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrActiveIssues
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RecordIssue appends an entry to the user's borrowing ledger. Called only
// by the lending workflow when an issue transaction is approved.
func (s *Store) RecordIssue(ctx context.Context, userID, bookID primitive.ObjectID, issuedAt, dueDate time.Time) error {
	entry := models.IssuedBook{
		BookID:   bookID,
		IssuedAt: issuedAt,
		DueDate:  dueDate,
		Returned: false,
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"issued_books": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RecordReturn marks the user's unreturned ledger entry for bookID as
// returned. The workflow guarantees at most one unreturned entry per book,
// so the positional update is unambiguous.
func (s *Store) RecordReturn(ctx context.Context, userID, bookID primitive.ObjectID, returnedAt time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": userID,
			"issued_books": bson.M{"$elemMatch": bson.M{
				"book_id":  bookID,
				"returned": false,
			}},
		},
		bson.M{"$set": bson.M{
			"issued_books.$.returned":    true,
			"issued_books.$.returned_at": returnedAt,
			"updated_at":                 time.Now(),
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

// CountActive counts active accounts, for the admin dashboard.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_active": true})
}
