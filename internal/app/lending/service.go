// internal/app/lending/service.go
//
// Package lending implements the borrowing workflow: members request
// issues and returns, admins decide on pending requests, complete
// approved returns, and delete closed transactions. Every copy-count
// mutation flows through here so that the book counters, the member's
// issued_books list, and the transaction record always move together.
package lending

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bookshelfhq/bookshelf/internal/app/store/books"
	"github.com/bookshelfhq/bookshelf/internal/app/store/transactions"
	"github.com/bookshelfhq/bookshelf/internal/app/store/users"
	"github.com/bookshelfhq/bookshelf/internal/app/system/txn"
	"github.com/bookshelfhq/bookshelf/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config carries the lending policy knobs.
type Config struct {
	// LoanPeriodDays is how long an issued book may be kept before it is
	// overdue. Due dates are stamped at approval time.
	LoanPeriodDays int

	// FinePerDay is charged for each started day past the due date.
	FinePerDay float64
}

// Service coordinates the three stores behind the lending workflow.
type Service struct {
	db    *mongo.Database
	books *bookstore.Store
	users *userstore.Store
	txns  *transactionstore.Store
	log   *zap.Logger
	cfg   Config

	now func() time.Time
}

func New(db *mongo.Database, books *bookstore.Store, users *userstore.Store, txns *transactionstore.Store, logger *zap.Logger, cfg Config) *Service {
	if cfg.LoanPeriodDays <= 0 {
		cfg.LoanPeriodDays = 14
	}
	if cfg.FinePerDay <= 0 {
		cfg.FinePerDay = 2
	}
	return &Service{
		db:    db,
		books: books,
		users: users,
		txns:  txns,
		log:   logger,
		cfg:   cfg,
		now:   time.Now,
	}
}

// RequestIssue records a member's request to borrow a book. The request
// is created in the pending state; no copies move until an admin
// approves it.
func (s *Service) RequestIssue(ctx context.Context, memberID, bookID primitive.ObjectID, notes string) (*models.Transaction, error) {
	book, err := s.books.GetActiveByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookUnavailable
		}
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, ErrBookUnavailable
	}

	_, err = s.txns.FindActiveIssue(ctx, memberID, bookID)
	switch {
	case err == nil:
		return nil, ErrDuplicateIssue
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	t, err := s.txns.Create(ctx, memberID, bookID, models.TxTypeIssue, notes)
	if err != nil {
		return nil, err
	}
	s.log.Info("issue requested",
		zap.String("transaction_id", t.ID.Hex()),
		zap.String("user_id", memberID.Hex()),
		zap.String("book_id", bookID.Hex()))
	return &t, nil
}

// RequestReturn records a member's request to return a book they
// currently hold. Fails with ErrNoActiveIssue when the member has no
// approved, unreturned issue of this book.
func (s *Service) RequestReturn(ctx context.Context, memberID, bookID primitive.ObjectID, notes string) (*models.Transaction, error) {
	_, err := s.txns.FindActiveIssue(ctx, memberID, bookID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoActiveIssue
		}
		return nil, err
	}

	t, err := s.txns.Create(ctx, memberID, bookID, models.TxTypeReturn, notes)
	if err != nil {
		return nil, err
	}
	s.log.Info("return requested",
		zap.String("transaction_id", t.ID.Hex()),
		zap.String("user_id", memberID.Hex()),
		zap.String("book_id", bookID.Hex()))
	return &t, nil
}

// Decide applies an admin's approve/reject decision to a pending
// transaction. Approving an issue moves a copy from available to issued
// and stamps the due date; approving a return only advances the status,
// the copy comes back in CompleteReturn. Rejection never touches
// counters. A transaction that has already left the pending state is
// reported as ErrTransactionNotPending, so a second decision on the
// same transaction is a no-op failure rather than a double move.
func (s *Service) Decide(ctx context.Context, txID primitive.ObjectID, status string, adminID primitive.ObjectID, notes string) (*models.Transaction, error) {
	if status != models.TxStatusApproved && status != models.TxStatusRejected {
		return nil, ErrInvalidTransactionState
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	t, err := s.txns.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if t.Status != models.TxStatusPending {
		return nil, ErrTransactionNotPending
	}

	dec := transactionstore.Decision{
		Status:     status,
		ApprovedBy: adminID,
		Notes:      notes,
	}

	if status == models.TxStatusRejected || t.Type == models.TxTypeReturn {
		updated, err := s.txns.ApplyDecision(ctx, txID, dec)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrTransactionNotPending
			}
			return nil, err
		}
		s.log.Info("transaction decided",
			zap.String("transaction_id", txID.Hex()),
			zap.String("status", status),
			zap.String("type", t.Type))
		return updated, nil
	}

	// Approved issue: book counter, member entry, and transaction move
	// together or not at all.
	now := s.now()
	dec.IssuedAt = &now
	due := now.AddDate(0, 0, s.cfg.LoanPeriodDays)
	dec.DueDate = &due

	var updated *models.Transaction
	err = txn.Run(ctx, s.db, s.log, func(sc context.Context) error {
		if err := s.books.IssueCopy(sc, t.BookID); err != nil {
			if errors.Is(err, bookstore.ErrUnavailable) {
				return ErrBookUnavailable
			}
			return err
		}
		if err := s.users.RecordIssue(sc, t.UserID, t.BookID, now, due); err != nil {
			return err
		}
		updated, err = s.txns.ApplyDecision(sc, txID, dec)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrTransactionNotPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("issue approved",
		zap.String("transaction_id", txID.Hex()),
		zap.String("user_id", t.UserID.Hex()),
		zap.String("book_id", t.BookID.Hex()),
		zap.Time("due_date", due))
	return updated, nil
}

// CompleteReturn finishes an approved return: the return transaction is
// marked completed, any overdue fine is computed against the paired
// issue's due date, the copy moves back from issued to available, and
// the member's issued_books entry is closed out.
func (s *Service) CompleteReturn(ctx context.Context, txID primitive.ObjectID, adminID primitive.ObjectID) (*models.Transaction, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	t, err := s.txns.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if t.Type != models.TxTypeReturn || t.Status != models.TxStatusApproved {
		return nil, ErrInvalidTransactionState
	}

	issueTx, err := s.txns.FindActiveIssue(ctx, t.UserID, t.BookID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// An approved return with no live issue behind it means the
			// issue was already closed some other way.
			return nil, ErrInvalidTransactionState
		}
		return nil, err
	}

	now := s.now()
	fine, overdue := s.fineFor(issueTx.DueDate, now)

	var updated *models.Transaction
	err = txn.Run(ctx, s.db, s.log, func(sc context.Context) error {
		updated, err = s.txns.SetCompleted(sc, txID, now)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrInvalidTransactionState
			}
			return err
		}
		if err := s.txns.CloseIssue(sc, issueTx.ID, now, fine, overdue); err != nil {
			return err
		}
		if err := s.books.ReturnCopy(sc, t.BookID); err != nil {
			if errors.Is(err, bookstore.ErrNoIssuedCopies) {
				return ErrNoIssuedCopies
			}
			return err
		}
		return s.users.RecordReturn(sc, t.UserID, t.BookID, now)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("return completed",
		zap.String("transaction_id", txID.Hex()),
		zap.String("user_id", t.UserID.Hex()),
		zap.String("book_id", t.BookID.Hex()),
		zap.Float64("fine_amount", fine),
		zap.Bool("overdue", overdue))
	return updated, nil
}

// DeleteTransaction removes a transaction record. Refused for a
// currently-active issue, which would strand the copy counters.
func (s *Service) DeleteTransaction(ctx context.Context, txID primitive.ObjectID, adminID primitive.ObjectID) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	t, err := s.txns.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTransactionNotFound
		}
		return err
	}
	if t.IsActiveIssue() {
		return ErrActiveIssue
	}
	if err := s.txns.Delete(ctx, txID); err != nil {
		return err
	}
	s.log.Info("transaction deleted",
		zap.String("transaction_id", txID.Hex()),
		zap.String("type", t.Type),
		zap.String("status", t.Status))
	return nil
}

// fineFor computes the fine for returning at the given time against a
// due date. Every started day past the due date counts as a full day.
func (s *Service) fineFor(dueDate *time.Time, at time.Time) (float64, bool) {
	if dueDate == nil || !at.After(*dueDate) {
		return 0, false
	}
	days := int(math.Ceil(at.Sub(*dueDate).Hours() / 24))
	return float64(days) * s.cfg.FinePerDay, true
}

func (s *Service) requireAdmin(ctx context.Context, adminID primitive.ObjectID) error {
	u, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotAuthorized
		}
		return err
	}
	if !u.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}
