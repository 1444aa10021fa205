// internal/domain/models/book.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability tracks the copy counters for a book.
//
// Invariant: AvailableCopies + IssuedCopies == TotalCopies. The counters only
// ever move together, one copy at a time, through the bookstore's IssueCopy
// and ReturnCopy conditional updates, so the invariant holds by construction.
type Availability struct {
	TotalCopies     int `bson:"total_copies" json:"total_copies"`
	AvailableCopies int `bson:"available_copies" json:"available_copies"`
	IssuedCopies    int `bson:"issued_copies" json:"issued_copies"`
}

// BookLocation records where the physical copies live in the building.
type BookLocation struct {
	Section string `bson:"section,omitempty" json:"section,omitempty"`
	Shelf   string `bson:"shelf,omitempty" json:"shelf,omitempty"`
	Floor   string `bson:"floor,omitempty" json:"floor,omitempty"`
}

// Book is a catalog title with its copy counters and availability flag.
//
// Books are soft-deleted: IsActive=false hides the title from the catalog
// but keeps the document so historical transactions still resolve.
type Book struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Author   string             `bson:"author" json:"author"`
	AuthorCI string             `bson:"author_ci" json:"author_ci"`
	ISBN     string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Genre    string             `bson:"genre" json:"genre"`

	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	Publisher     string     `bson:"publisher,omitempty" json:"publisher,omitempty"`
	PublishedDate *time.Time `bson:"published_date,omitempty" json:"published_date,omitempty"`
	Pages         int        `bson:"pages,omitempty" json:"pages,omitempty"`
	CoverImage    string     `bson:"cover_image,omitempty" json:"cover_image,omitempty"`

	Availability Availability `bson:"availability" json:"availability"`
	Location     BookLocation `bson:"location,omitempty" json:"location,omitempty"`
	Tags         []string     `bson:"tags,omitempty" json:"tags,omitempty"`

	AddedByID *primitive.ObjectID `bson:"added_by_id,omitempty" json:"added_by_id,omitempty"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	Featured  bool               `bson:"featured,omitempty" json:"featured,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAvailable reports whether at least one copy can be issued right now.
func (b *Book) IsAvailable() bool {
	return b.IsActive && b.Availability.AvailableCopies > 0
}
