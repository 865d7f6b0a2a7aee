package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// Transactor runs a unit of work against a TaskRepository bound to a single
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise, including when fn panics.
type Transactor interface {
	ReadOnly(ctx context.Context, fn func(TaskRepository) error) error
	ReadWrite(ctx context.Context, fn func(TaskRepository) error) error
}

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type pgxTransactor struct {
	db txBeginner
}

// NewTransactor accepts a *pgxpool.Pool or *pgx.Conn.
func NewTransactor(db txBeginner) Transactor {
	return &pgxTransactor{
		db: db,
	}
}

func (t *pgxTransactor) ReadOnly(ctx context.Context, fn func(TaskRepository) error) error {
	return t.run(ctx, "read_only", pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (t *pgxTransactor) ReadWrite(ctx context.Context, fn func(TaskRepository) error) error {
	return t.run(ctx, "read_write", pgx.TxOptions{AccessMode: pgx.ReadWrite}, fn)
}

func (t *pgxTransactor) run(ctx context.Context, mode string, opts pgx.TxOptions, fn func(TaskRepository) error) (err error) {
	start := time.Now()

	tx, err := t.db.BeginTx(ctx, opts)
	if err != nil {
		logger.LogTransaction(ctx, mode, "begin_failed", time.Since(start), err)
		return HandlePgxError("begin_"+mode, err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx, mode)
			logger.LogTransaction(ctx, mode, "rollback", time.Since(start), fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := fn(NewTaskRepository(tx)); err != nil {
		rollback(ctx, tx, mode)
		logger.LogTransaction(ctx, mode, "rollback", time.Since(start), err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.LogTransaction(ctx, mode, "commit_failed", time.Since(start), err)
		return WrapError("commit_"+mode, fmt.Errorf("%w: %w", ErrTransactionFailed, HandlePgxError("", err)))
	}

	logger.LogTransaction(ctx, mode, "commit", time.Since(start), nil)
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, mode string) {
	// The request context may already be cancelled; rollback must still reach the server.
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.ErrorContext(ctx, "Transaction rollback failed",
			slog.String("mode", mode),
			slog.String("error", err.Error()),
		)
	}
}
