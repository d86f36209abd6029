package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ErrTxDone is returned by Commit once the guard has already committed or rolled back.
var ErrTxDone = errors.New("transaction already finished")

// Guard owns one GORM transaction from Begin until Release.
//
// Typical use:
//
//	g, err := db.Begin(ctx, conn, logger)
//	if err != nil { ... }
//	defer g.Release()
//	... work with g.DB() ...
//	return g.Commit()
//
// Release rolls back unless Commit ran first, so every early return (and a
// panic) leaves no partial state and hands the connection back to the pool.
type Guard struct {
	tx     *gorm.DB
	logger *slog.Logger
	done   bool
}

// Begin starts a transaction bound to ctx.
func Begin(ctx context.Context, conn *gorm.DB, logger *slog.Logger) (*Guard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tx := conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	logger.DebugContext(ctx, "transaction started")
	return &Guard{tx: tx, logger: logger}, nil
}

// DB returns the transaction handle. It must not be used after Commit or Release.
func (g *Guard) DB() *gorm.DB {
	return g.tx
}

// Commit commits the transaction. A failed commit still finishes the guard.
func (g *Guard) Commit() error {
	if g.done {
		return ErrTxDone
	}
	g.done = true
	if err := g.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	g.logger.Debug("transaction committed")
	return nil
}

// Release rolls the transaction back if it is still open. Safe to defer and to call twice.
func (g *Guard) Release() {
	if g.done {
		return
	}
	g.done = true
	if err := g.tx.Rollback().Error; err != nil {
		g.logger.Error("transaction rollback failed", "error", err)
		return
	}
	g.logger.Debug("transaction rolled back")
}

// WithinTx runs fn inside a guarded transaction and commits when fn returns nil.
func WithinTx(ctx context.Context, conn *gorm.DB, logger *slog.Logger, fn func(tx *gorm.DB) error) error {
	g, err := Begin(ctx, conn, logger)
	if err != nil {
		return err
	}
	defer g.Release()

	if err := fn(g.DB()); err != nil {
		return err
	}
	return g.Commit()
}
