// internal/domain/models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TxTypeIssue  = "issue"
	TxTypeReturn = "return"
)

// Transaction statuses. pending -> approved|rejected; approved -> completed
// (return type only). Transitions never go backward.
const (
	TxStatusPending   = "pending"
	TxStatusApproved  = "approved"
	TxStatusRejected  = "rejected"
	TxStatusCompleted = "completed"
)

// Transaction records one issue or return request and its approval state.
// A full lending cycle is two transactions: the approved issue and the
// completed return.
type Transaction struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	BookID primitive.ObjectID `bson:"book_id" json:"book_id"`
	Type   string             `bson:"type" json:"type"`     // issue | return
	Status string             `bson:"status" json:"status"` // pending | approved | rejected | completed

	RequestedAt time.Time  `bson:"requested_at" json:"requested_at"`
	IssuedAt    *time.Time `bson:"issued_at,omitempty" json:"issued_at,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	ReturnedAt  *time.Time `bson:"returned_at,omitempty" json:"returned_at,omitempty"`

	ApprovedByID *primitive.ObjectID `bson:"approved_by_id,omitempty" json:"approved_by_id,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`

	FineAmount float64 `bson:"fine_amount" json:"fine_amount"`
	FinePaid   bool    `bson:"fine_paid" json:"fine_paid"`
	IsOverdue  bool    `bson:"is_overdue" json:"is_overdue"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Display fields resolved on read; never written to the collection.
	User *TransactionUserRef `bson:"-" json:"user,omitempty"`
	Book *TransactionBookRef `bson:"-" json:"book,omitempty"`
}

// TransactionUserRef carries the display fields of the referenced user.
type TransactionUserRef struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
}

// TransactionBookRef carries the display fields of the referenced book.
type TransactionBookRef struct {
	ID     primitive.ObjectID `json:"id"`
	Title  string             `json:"title"`
	Author string             `json:"author"`
}

// IsActiveIssue reports whether this transaction is a currently-active,
// unreturned issue. Active issues block deletion of the transaction, the
// book, and the borrowing user.
func (t *Transaction) IsActiveIssue() bool {
	return t.Type == TxTypeIssue && t.Status == TxStatusApproved && t.ReturnedAt == nil
}
