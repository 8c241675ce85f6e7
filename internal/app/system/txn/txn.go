// Package txn runs multi-document writes inside a MongoDB transaction.
//
// Transactions need a replica set or sharded cluster. On a standalone
// mongod (typical for local development) starting a transaction fails with
// one of a handful of errors; Run detects those and executes the function
// without a transaction, logging a warning so the downgrade is visible.
package txn

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. fn must do all of
// its reads and writes with the ctx it is given so they join the session.
// If fn returns an error the transaction is aborted and the error returned.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fallback(ctx, log, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	switch {
	case err == nil:
		metrics.Transactions.WithLabelValues("committed").Inc()
	case IsNotSupported(err):
		return fallback(ctx, log, err, fn)
	default:
		metrics.Transactions.WithLabelValues("aborted").Inc()
	}
	return err
}

func fallback(ctx context.Context, log *zap.Logger, cause error, fn func(ctx context.Context) error) error {
	warn(log, cause)
	metrics.Transactions.WithLabelValues("fallback").Inc()
	return fn(ctx)
}

func warn(log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Warn("transactions not supported by server; running without transaction", zap.Error(err))
}

// notSupportedCodes are server codes seen when a deployment cannot run
// multi-document transactions.
var notSupportedCodes = map[int32]struct{}{
	20:  {}, // IllegalOperation: transaction numbers on a standalone
	51:  {}, // IllegalOperation (older servers)
	263: {}, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run
// transactions, as opposed to a failure inside one.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if _, ok := notSupportedCodes[ce.Code]; ok {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}
