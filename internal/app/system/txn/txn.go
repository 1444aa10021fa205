// internal/app/system/txn/txn.go

// Package txn runs a function inside a Mongo multi-document transaction when
// the server supports it (replica set / mongos), and falls back to running
// the function directly against standalone servers.
//
// The lending workflow uses this to make its book/user/transaction write
// sequences atomic where possible; on a standalone server the sequence
// degrades to ordered independent writes, which is the accepted failure
// model for a crash mid-sequence.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a session transaction on db's client. If starting
// or committing the transaction fails because the topology does not support
// transactions, fn is re-run outside a transaction.
//
// fn must be idempotent-safe for the retry that mongo's WithTransaction may
// perform on transient errors, and must use the ctx it receives for every
// database call so the operations join the session.
func Run(ctx context.Context, db *mongo.Database, logger *zap.Logger, fn func(ctx context.Context) error) error {
	client := db.Client()

	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Debug("mongo transactions unavailable, running sequentially", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Debug("mongo transactions unavailable, running sequentially", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are not supported on this
// topology (standalone server, old version, or illegal operation).
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: transaction numbers require replica set
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions, as opposed to the transaction itself failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return notSupportedCodes[ce.Code]
	}

	// Driver-side errors don't carry codes; match on the known phrasings.
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "transaction") && !strings.Contains(msg, "session") {
		return false
	}
	for _, hint := range []string{"replica set", "not supported", "session", "illegal operation"} {
		if strings.Contains(msg, hint) && strings.Contains(msg, "transaction") {
			return true
		}
		if hint == "not supported" && strings.Contains(msg, hint) && strings.Contains(msg, "session") {
			return true
		}
	}
	return false
}
