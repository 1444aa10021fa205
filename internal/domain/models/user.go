// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IssuedBook is one entry in a user's borrowing ledger. An entry is appended
// when an issue transaction is approved and marked returned when the paired
// return transaction is completed.
//
// Invariant: a user has at most one entry per BookID with Returned=false.
// The lending workflow enforces this, not the document itself.
type IssuedBook struct {
	BookID     primitive.ObjectID `bson:"book_id" json:"book_id"`
	IssuedAt   time.Time          `bson:"issued_at" json:"issued_at"`
	DueDate    time.Time          `bson:"due_date" json:"due_date"`
	Returned   bool               `bson:"returned" json:"returned"`
	ReturnedAt *time.Time         `bson:"returned_at,omitempty" json:"returned_at,omitempty"`
}

// User represents both regular members and admins.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // user | admin
	PhoneNumber  string             `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`

	IssuedBooks []IssuedBook `bson:"issued_books" json:"issued_books"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
