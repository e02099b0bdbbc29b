package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/taxonomy/internal/db"
)

// FailOnNthTxUoW is a test UoW whose Nth WithinTx call fails before the
// callback runs. Every other call commits normally against DB. Calls are
// counted starting at 1.
type FailOnNthTxUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	calls atomic.Int32
}

func (u *FailOnNthTxUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	if u.calls.Add(1) == u.FailOn {
		return u.Err
	}
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, fn)
}

// Calls reports how many transactions were requested.
func (u *FailOnNthTxUoW) Calls() int {
	return int(u.calls.Load())
}
