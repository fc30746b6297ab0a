package dal

import (
	"context"

	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/schema"
)

// RowSet is a fully materialized query result: column names in select
// order and rows as positional values. Results are snapshots; mutating a
// cached RowSet is a caller bug.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Executor is the engine-facing contract the runtime consumes. The core
// never touches database/sql directly: everything below this line is a
// dialect-specific concern.
//
// Begin/Commit/Rollback return the transaction nesting depth after the
// call, matching the savepoint-free counting model of the drivers.
type Executor interface {
	Query(ctx context.Context, sql string) (*RowSet, error)
	QueryCount(ctx context.Context, sql string) (int64, error)
	Execute(ctx context.Context, sql string) (int32, error)
	InsertAndGetIdentity(ctx context.Context, sql string) (int64, error)

	// Parameterized variants for caller-supplied values. Implementations
	// screen string parameters before binding.
	QueryWithParams(ctx context.Context, sql string, params ...any) (*RowSet, error)
	ExecuteWithParams(ctx context.Context, sql string, params ...any) (int32, error)

	Begin(ctx context.Context) (int32, error)
	Commit(ctx context.Context) (int32, error)
	Rollback(ctx context.Context) (int32, error)

	// SchemaCollection serves the native introspection collections
	// (Tables, Columns, Indexes, IndexColumns, DataTypes) with
	// provider-specific field naming.
	SchemaCollection(ctx context.Context, collection, tableFilter string) ([]schema.Row, error)

	Ping(ctx context.Context) error
	Close() error
}

// ExecutorOpener builds an executor for a dialect and connection string.
// The runtime takes it as a dependency so tests can substitute fakes.
type ExecutorOpener func(ctx context.Context, d dialect.Dialect, connString string) (Executor, error)
