// Package sqlexec is the database/sql-backed executor behind the runtime.
// One executor wraps one *sql.DB; the drivers for every supported dialect
// are linked in via blank imports.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"  // mysql
	_ "github.com/jackc/pgx/v5/stdlib"  // pgx
	_ "github.com/microsoft/go-mssqldb" // sqlserver
	_ "modernc.org/sqlite"              // sqlite

	"github.com/omnidal-io/omnidal/pkg/apperrors"
	"github.com/omnidal-io/omnidal/pkg/dal"
	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/schema"
	"github.com/omnidal-io/omnidal/pkg/sqlguard"
)

// Executor runs statements for one connection through database/sql,
// routing through the active transaction when one is open.
type Executor struct {
	db *sql.DB
	d  dialect.Dialect

	mu    sync.Mutex
	tx    *sql.Tx
	depth int32
}

// Open builds an executor for the dialect's registered driver. database/sql
// dials lazily, so Open itself does not touch the network.
func Open(ctx context.Context, d dialect.Dialect, connString string) (dal.Executor, error) {
	db, err := sql.Open(d.DriverName(), connString)
	if err != nil {
		return nil, fmt.Errorf("open %s driver: %w", d.DriverName(), err)
	}
	return &Executor{db: db, d: d}, nil
}

var _ dal.ExecutorOpener = Open

// querier is the common surface of *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (e *Executor) runner() querier {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tx != nil {
		return e.tx
	}
	return e.db
}

func (e *Executor) Query(ctx context.Context, sqlText string) (*dal.RowSet, error) {
	rows, err := e.runner().QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return readAll(rows)
}

func (e *Executor) QueryCount(ctx context.Context, sqlText string) (int64, error) {
	var n int64
	if err := e.runner().QueryRowContext(ctx, sqlText).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (e *Executor) Execute(ctx context.Context, sqlText string) (int32, error) {
	res, err := e.runner().ExecContext(ctx, sqlText)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some ODBC backends cannot report the count; the statement ran.
		return 0, nil
	}
	return int32(affected), nil
}

// InsertAndGetIdentity runs the insert and reads the generated identity on
// the same connection, so concurrent inserts on other connections cannot
// interleave. Inside a transaction the transaction's connection is used.
func (e *Executor) InsertAndGetIdentity(ctx context.Context, sqlText string) (int64, error) {
	identitySQL := e.d.IdentitySQL()
	if identitySQL == "" {
		return 0, fmt.Errorf("dialect %s has no connection-scoped identity query", e.d.Name())
	}

	e.mu.Lock()
	tx := e.tx
	e.mu.Unlock()

	if tx != nil {
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			return 0, err
		}
		var id int64
		if err := tx.QueryRowContext(ctx, identitySQL).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, sqlText); err != nil {
		return 0, err
	}
	var id int64
	if err := conn.QueryRowContext(ctx, identitySQL).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *Executor) QueryWithParams(ctx context.Context, sqlText string, params ...any) (*dal.RowSet, error) {
	if f := sqlguard.CheckParams(params); f != nil {
		return nil, fmt.Errorf("rejected parameter: %w", f)
	}
	rows, err := e.runner().QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return readAll(rows)
}

func (e *Executor) ExecuteWithParams(ctx context.Context, sqlText string, params ...any) (int32, error) {
	if f := sqlguard.CheckParams(params); f != nil {
		return 0, fmt.Errorf("rejected parameter: %w", f)
	}
	res, err := e.runner().ExecContext(ctx, sqlText, params...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int32(affected), nil
}

// Begin opens a transaction, or bumps the nesting depth when one is
// already open. Inner "transactions" are counted, not savepointed: the
// outermost commit decides.
func (e *Executor) Begin(ctx context.Context) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tx != nil {
		e.depth++
		return e.depth, nil
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	e.tx = tx
	e.depth = 1
	return 1, nil
}

// Commit closes one nesting level; the real commit happens when the
// outermost level closes.
func (e *Executor) Commit(ctx context.Context) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tx == nil {
		return 0, fmt.Errorf("commit without open transaction")
	}
	e.depth--
	if e.depth > 0 {
		return e.depth, nil
	}
	err := e.tx.Commit()
	e.tx = nil
	e.depth = 0
	return 0, err
}

// Rollback aborts the whole transaction regardless of nesting depth.
func (e *Executor) Rollback(ctx context.Context) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tx == nil {
		return 0, fmt.Errorf("rollback without open transaction")
	}
	err := e.tx.Rollback()
	e.tx = nil
	e.depth = 0
	return 0, err
}

// SchemaCollection serves the native introspection collections. DataTypes
// is synthesized from the dialect's built-in capability catalog; the rest
// run the dialect's introspection SQL. Collections the engine cannot
// express are apperrors.ErrCollectionUnsupported.
func (e *Executor) SchemaCollection(ctx context.Context, collection, tableFilter string) ([]schema.Row, error) {
	if collection == schema.CollectionDataTypes {
		return capabilityRows(e.d.Capabilities()), nil
	}

	query, ok := e.d.CollectionQuery(collection, tableFilter)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", apperrors.ErrCollectionUnsupported, collection, e.d.Name())
	}

	rows, err := e.runner().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return readRows(rows)
}

func (e *Executor) Ping(ctx context.Context) error { return e.db.PingContext(ctx) }

func (e *Executor) Close() error { return e.db.Close() }

// capabilityRows presents the built-in catalog in the same tabular shape a
// live DataTypes collection would have.
func capabilityRows(caps []schema.DataTypeCapability) []schema.Row {
	rows := make([]schema.Row, 0, len(caps))
	for _, c := range caps {
		rows = append(rows, schema.Row{
			"TypeName":         c.TypeName,
			"DataType":         string(c.Semantic),
			"ColumnSize":       c.MaxSize,
			"CreateParameters": c.Params,
			"IsFixedLength":    c.IsFixedLength,
			"IsLong":           c.IsLong,
			"IsBestMatch":      c.IsBestMatch,
			"IsUnicode":        c.IsUnicode,
		})
	}
	return rows
}

// readAll materializes a result set positionally.
func readAll(rows *sql.Rows) (*dal.RowSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &dal.RowSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, values)
	}
	return rs, rows.Err()
}

// readRows materializes a result set as field bags for the schema reader.
func readRows(rows *sql.Rows) ([]schema.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []schema.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(schema.Row, len(cols))
		for i, name := range cols {
			row[name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ dal.Executor = (*Executor)(nil)
