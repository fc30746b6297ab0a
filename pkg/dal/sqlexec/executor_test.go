package sqlexec

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnidal-io/omnidal/pkg/apperrors"
	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/schema"
)

func newMockExecutor(t *testing.T, dialectName string) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d, ok := dialect.Get(dialectName)
	require.True(t, ok)
	return &Executor{db: db, d: d}, mock
}

func TestQueryMaterializesRowSet(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "ada").
			AddRow(int64(2), "grace"))

	rs, err := e.Query(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, int64(1), rs.Rows[0][0])
	assert.Equal(t, "grace", rs.Rows[1][1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryCountScansScalar(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	mock.ExpectQuery("SELECT COUNT(*) FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	n, err := e.QueryCount(context.Background(), "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReportsRowsAffected(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	mock.ExpectExec("DELETE FROM users WHERE inactive = 1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := e.Execute(context.Background(), "DELETE FROM users WHERE inactive = 1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAndGetIdentitySameConnection(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLServer)
	mock.ExpectExec("INSERT INTO users (name) VALUES ('ada')").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT CAST(SCOPE_IDENTITY() AS bigint)").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	id, err := e.InsertAndGetIdentity(context.Background(), "INSERT INTO users (name) VALUES ('ada')")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAndGetIdentityUnsupportedDialect(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.Oracle)

	_, err := e.InsertAndGetIdentity(context.Background(), "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	// Nothing ran: the dialect check happens before touching the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionDepthCounting(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectCommit()

	depth, err := e.Begin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), depth)

	depth, err = e.Begin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), depth)

	depth, err = e.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), depth)

	depth, err = e.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), depth)

	_, err = e.Commit(ctx)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackAbortsWholeTransaction(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := e.Begin(ctx)
	require.NoError(t, err)
	_, err = e.Begin(ctx)
	require.NoError(t, err)

	depth, err := e.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), depth)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementsRouteThroughOpenTransaction(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(int64(1)))
	mock.ExpectCommit()

	_, err := e.Begin(ctx)
	require.NoError(t, err)
	_, err = e.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = e.Commit(ctx)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithParamsRejectsInjection(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)

	_, err := e.QueryWithParams(context.Background(),
		"SELECT * FROM users WHERE name = ?", "'; DROP TABLE users--")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected parameter")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithParamsBindsCleanValues(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	rs, err := e.QueryWithParams(context.Background(), "SELECT * FROM users WHERE id = ?", int64(5))
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteWithParamsRejectsInjection(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)

	_, err := e.ExecuteWithParams(context.Background(),
		"UPDATE users SET name = ? WHERE id = ?", "x' OR '1'='1", int64(1))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCollectionDataTypesIsSynthesized(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.MySQL)

	rows, err := e.SchemaCollection(context.Background(), schema.CollectionDataTypes, "")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	caps := schema.CapabilitiesFromRows(rows)
	assert.Len(t, caps, len(rows))
	// No statement ran: the catalog is built in.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCollectionRunsIntrospectionQuery(t *testing.T) {
	e, mock := newMockExecutor(t, dialect.SQLite)
	query, ok := e.d.CollectionQuery(schema.CollectionTables, "")
	require.True(t, ok)
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "table_type"}).
			AddRow("orders", "BASE TABLE"))

	rows, err := e.SchemaCollection(context.Background(), schema.CollectionTables, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, _ := rows[0].String("table_name")
	assert.Equal(t, "orders", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCollectionUnsupported(t *testing.T) {
	e, _ := newMockExecutor(t, dialect.Access)

	_, err := e.SchemaCollection(context.Background(), schema.CollectionColumns, "t")
	assert.ErrorIs(t, err, apperrors.ErrCollectionUnsupported)
}
