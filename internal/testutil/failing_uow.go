package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/plantree/internal/sqlite"
)

// FailingUoW runs transactions like sqlite's own unit of work but consults
// Fail before every statement executed through the transaction. A non-nil
// result is returned in place of the statement and the transaction rolls back.
type FailingUoW struct {
	DB *sqlite.DB
	// Fail receives the 1-based exec count within the transaction.
	Fail func(n int, query string) error
}

// FailOnExec fails the nth exec of each transaction with err.
func FailOnExec(db *sqlite.DB, n int, err error) *FailingUoW {
	return &FailingUoW{DB: db, Fail: func(i int, _ string) error {
		if i == n {
			return err
		}
		return nil
	}}
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx sqlite.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, fail: u.Fail}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingTx struct {
	sqlite.DBTX
	execs int
	fail  func(n int, query string) error
}

func (t *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.execs++
	if err := t.fail(t.execs, query); err != nil {
		return nil, err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}
