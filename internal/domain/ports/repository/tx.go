package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept it as `qx any`
// and detect the concrete type (pgx.Tx for Postgres) implementation-side;
// NoTX selects the plain pool path.
type Tx = any

var NoTX Tx

// TransactionManager executes fn inside a database transaction, passing the
// handle through `tx`. Use-case interfaces stay free of storage types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
