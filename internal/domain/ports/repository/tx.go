package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Use-case interfaces stay clean (no driver transaction types leaking out);
// repository methods accept a Tx and detect a live transaction on the
// implementation side. Repositories MUST gracefully accept a nil Tx and fall
// back to the non-transactional path.
//
// The persistence transaction of the pipeline (document fields + action items
// + job status, all-or-nothing) and the retry reset are the two callers that
// strictly require it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
