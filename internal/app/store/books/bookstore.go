package bookstore

import (
	"context"
	"errors"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/system/htmlsanitize"
	"github.com/bookshelfhq/bookshelf/internal/app/system/normalize"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateISBN is returned when creating a book with an ISBN that
	// already exists.
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

	// ErrUnavailable is returned by IssueCopy when no copy is available,
	// and by lookups when the book is missing or inactive.
	ErrUnavailable = errors.New("book not available")

	// ErrNoIssuedCopies is returned by ReturnCopy when the issued counter
	// is already zero.
	ErrNoIssuedCopies = errors.New("no issued copies to return")

	// ErrActiveIssues is returned by Deactivate while approved, unreturned
	// issue transactions still reference the book.
	ErrActiveIssues = errors.New("book has active issues")

	errBadCopies = errors.New("total_copies must be at least 1")
)

// Store wraps the books collection.
type Store struct {
	c   *mongo.Collection
	txc *mongo.Collection // transactions, read for the deactivate guard
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("books"),
		txc: db.Collection("transactions"),
	}
}

// GetByID loads a book by ObjectID regardless of its active flag.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var b models.Book
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetActiveByID loads a book by ObjectID, returning mongo.ErrNoDocuments if
// the book does not exist or is soft-deleted.
func (s *Store) GetActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var b models.Book
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListFilter controls List queries.
type ListFilter struct {
	Search string // case-insensitive match on title/author/genre/description
	Skip   int64
	Limit  int64
}

// List returns active catalog books, newest first, with the total match
// count for pagination.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Book, int64, error) {
	query := bson.M{"is_active": true}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexEscape(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"author": re},
			bson.M{"genre": re},
			bson.M{"description": re},
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

	var rows []models.Book
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new book after normalizing and validating fields.
// Availability defaults to all copies on the shelf.
func (s *Store) Create(ctx context.Context, b models.Book) (models.Book, error) {
	b.ID = primitive.NewObjectID()
	b.Title = normalize.Name(b.Title)
	b.TitleCI = text.Fold(b.Title)
	b.Author = normalize.Name(b.Author)
	b.AuthorCI = text.Fold(b.Author)
	b.Description = htmlsanitize.Sanitize(b.Description)

	if b.Availability.TotalCopies < 1 {
		return models.Book{}, errBadCopies
	}
	if b.Availability.AvailableCopies == 0 && b.Availability.IssuedCopies == 0 {
		b.Availability.AvailableCopies = b.Availability.TotalCopies
	}
	if b.Availability.AvailableCopies+b.Availability.IssuedCopies != b.Availability.TotalCopies {
		return models.Book{}, errBadCopies
	}

	b.IsActive = true
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Book{}, ErrDuplicateISBN
		}
		return models.Book{}, err
	}
	return b, nil
}

// Update holds the catalog fields an admin can change. Copy counters are
// deliberately absent: availability only moves through IssueCopy/ReturnCopy.
type Update struct {
	Title         string
	Author        string
	Genre         string
	ISBN          string
	Description   string
	Publisher     string
	PublishedDate *time.Time
	Pages         int
	CoverImage    string
	Location      models.BookLocation
	Tags          []string
	Featured      bool
}

// UpdateFields applies an admin edit to an active book.
func (s *Store) UpdateFields(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Book, error) {
	title := normalize.Name(upd.Title)
	author := normalize.Name(upd.Author)
	set := bson.M{
		"title":          title,
		"title_ci":       text.Fold(title),
		"author":         author,
		"author_ci":      text.Fold(author),
		"genre":          upd.Genre,
		"isbn":           upd.ISBN,
		"description":    htmlsanitize.Sanitize(upd.Description),
		"publisher":      upd.Publisher,
		"published_date": upd.PublishedDate,
		"pages":          upd.Pages,
		"cover_image":    upd.CoverImage,
		"location":       upd.Location,
		"tags":           upd.Tags,
		"featured":       upd.Featured,
		"updated_at":     time.Now(),
	}

	var b models.Book
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}
	return &b, nil
}

// IssueCopy moves one copy from available to issued. It is one of only two
// mutators of the copy counters. The filter requires an active book with at
// least one available copy, so a concurrent approval of the last copy can
// never drive the counter negative.
func (s *Store) IssueCopy(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":                           id,
			"is_active":                     true,
			"availability.available_copies": bson.M{"$gt": 0},
		},
		bson.M{
			"$inc": bson.M{
				"availability.available_copies": -1,
				"availability.issued_copies":    1,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrUnavailable
	}
	return nil
}

// ReturnCopy moves one copy from issued back to available, the inverse of
// IssueCopy with the symmetric guard on the issued counter.
func (s *Store) ReturnCopy(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":                        id,
			"availability.issued_copies": bson.M{"$gt": 0},
		},
		bson.M{
			"$inc": bson.M{
				"availability.available_copies": 1,
				"availability.issued_copies":    -1,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrNoIssuedCopies
	}
	return nil
}

// Deactivate soft-deletes a book. It is blocked while any approved,
// unreturned issue transaction still references the book.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	active, err := s.txc.CountDocuments(ctx, bson.M{
		"book_id":     id,
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

// CountAvailableCopies sums available copies across the active catalog, for
// the admin dashboard.
func (s *Store) CountAvailableCopies(ctx context.Context) (int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$availability.available_copies"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

// CountActive counts active catalog titles.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_active": true})
}

// regexEscape neutralizes regex metacharacters in user-entered search text.
func regexEscape(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, m := range meta {
			if r == m {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}
