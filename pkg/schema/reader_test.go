package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/omnidal-io/omnidal/pkg/apperrors"
)

// fakeDialect is a minimal DialectInfo for normalization tests.
type fakeDialect struct{}

func (fakeDialect) Name() string             { return "testdb" }
func (fakeDialect) MaxTextLength() int64     { return 1000000 }
func (fakeDialect) LongTextThreshold() int64 { return 4000 }
func (fakeDialect) IsKeyword(name string) bool {
	switch strings.ToUpper(name) {
	case "ORDER", "SELECT", "USER":
		return true
	}
	return false
}
func (fakeDialect) QuoteIdentifier(name string) string { return "[" + name + "]" }

// fakeSource serves canned collections keyed by collection name, or by
// "collection/table" for per-table collections.
type fakeSource struct {
	collections map[string][]Row
	errs        map[string]error
}

func (s *fakeSource) SchemaCollection(ctx context.Context, collection, tableFilter string) ([]Row, error) {
	key := collection
	if tableFilter != "" {
		key = collection + "/" + tableFilter
	}
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if rows, ok := s.collections[key]; ok {
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrCollectionUnsupported, collection)
}

func newReaderForTest(t *testing.T, src *fakeSource) *Reader {
	t.Helper()
	return NewReader(src, fakeDialect{}, zaptest.NewLogger(t))
}

func TestReadNormalizesTablesAndColumns(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {
			{"TABLE_NAME": "orders", "TABLE_SCHEMA": "dbo", "TABLE_TYPE": "BASE TABLE"},
			{"TABLE_NAME": "order_view", "TABLE_TYPE": "VIEW"},
		},
		CollectionColumns + "/orders": {
			{"COLUMN_NAME": "id", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int", "IS_IDENTITY": true, "IS_PRIMARY_KEY": true, "IS_NULLABLE": false},
			{"COLUMN_NAME": "total", "ORDINAL_POSITION": int64(2), "DATA_TYPE": "decimal", "NUMERIC_PRECISION": int64(10), "NUMERIC_SCALE": int64(2), "IS_NULLABLE": "YES"},
		},
		CollectionDataTypes: {
			{"TypeName": "int", "DataType": "int32", "ColumnSize": int64(10)},
			{"TypeName": "decimal", "DataType": "decimal", "ColumnSize": int64(38), "CreateParameters": "precision,scale"},
		},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	orders := tables[0]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, 1, orders.ID)
	assert.Equal(t, "dbo", orders.Owner)
	assert.False(t, orders.IsView)
	assert.Equal(t, "testdb", orders.Dialect)
	assert.True(t, tables[1].IsView)

	require.Len(t, orders.Columns, 2)
	id := orders.Columns[0]
	assert.Equal(t, SemanticInt32, id.Semantic)
	assert.True(t, id.IsIdentity)
	assert.True(t, id.IsPrimary)
	assert.False(t, id.IsNullable)
	assert.Same(t, orders, id.Table)

	total := orders.Columns[1]
	assert.Equal(t, SemanticDecimal, total.Semantic)
	assert.True(t, total.IsNullable)
	// Length defaults to precision, byte length to length.
	assert.Equal(t, int64(10), total.Length)
	assert.Equal(t, int64(10), total.ByteLength)
	assert.Equal(t, "decimal(10,2)", total.Formatted)
}

func TestReadTableCollectionFailureIsFatal(t *testing.T) {
	src := &fakeSource{
		collections: map[string][]Row{},
		errs:        map[string]error{CollectionTables: errors.New("login failed")},
	}

	_, err := newReaderForTest(t, src).Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaRead)
}

func TestReadUnsupportedTableCatalogYieldsEmptySnapshot(t *testing.T) {
	// Engines without a queryable catalog (Jet over ODBC) read as empty,
	// not as a failed pass.
	src := &fakeSource{collections: map[string][]Row{}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestReadKeepsPartialTableOnColumnFailure(t *testing.T) {
	src := &fakeSource{
		collections: map[string][]Row{
			CollectionTables: {
				{"TABLE_NAME": "good"},
				{"TABLE_NAME": "broken"},
			},
			CollectionColumns + "/good": {
				{"COLUMN_NAME": "id", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int"},
			},
			CollectionDataTypes: {},
		},
		errs: map[string]error{
			CollectionColumns + "/broken": errors.New("permission denied"),
		},
	}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Columns, 1)
	assert.Empty(t, tables[1].Columns)
}

func TestAllZeroOrdinalsGetInsertionOrder(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "a", "DATA_TYPE": "int"},
			{"COLUMN_NAME": "b", "DATA_TYPE": "int"},
			{"COLUMN_NAME": "c", "DATA_TYPE": "int"},
		},
		CollectionDataTypes: {},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	ids := []int{}
	for _, col := range tables[0].Columns {
		ids = append(ids, col.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestMixedOrdinalsKeepNonZeroVerbatim(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "a", "ORDINAL_POSITION": int64(7), "DATA_TYPE": "int"},
			{"COLUMN_NAME": "b", "DATA_TYPE": "int"},
			{"COLUMN_NAME": "c", "ORDINAL_POSITION": int64(3), "DATA_TYPE": "int"},
		},
		CollectionDataTypes: {},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	cols := tables[0].Columns
	assert.Equal(t, 7, cols[0].ID)
	assert.Equal(t, 2, cols[1].ID) // encounter order + 1
	assert.Equal(t, 3, cols[2].ID)
}

func TestDuplicateColumnNamesAreDeduplicated(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "value", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int"},
			{"COLUMN_NAME": "Value", "ORDINAL_POSITION": int64(2), "DATA_TYPE": "int"},
		},
		CollectionDataTypes: {},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	cols := tables[0].Columns
	assert.Equal(t, "value", cols[0].Name)
	assert.Equal(t, "Value_2", cols[1].Name)
}

func TestKeywordColumnsGetQuotedSafeName(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "User", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int"},
			{"COLUMN_NAME": "plain", "ORDINAL_POSITION": int64(2), "DATA_TYPE": "int"},
		},
		CollectionDataTypes: {},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	cols := tables[0].Columns
	assert.Equal(t, "[User]", cols[0].SafeName)
	assert.Equal(t, "plain", cols[1].SafeName)
}

func TestUnboundedTextFallsBackToDialectMax(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "notes", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "text"},
		},
		CollectionDataTypes: {
			{"TypeName": "text", "DataType": "text", "ColumnSize": int64(1000000), "IsLong": true},
		},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	notes := tables[0].Columns[0]
	assert.Equal(t, SemanticText, notes.Semantic)
	assert.Equal(t, int64(1000000), notes.Length)
}

func TestIndexesMergeInlineAndSeparateColumns(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "id", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int"},
			{"COLUMN_NAME": "region", "ORDINAL_POSITION": int64(2), "DATA_TYPE": "int"},
			{"COLUMN_NAME": "city", "ORDINAL_POSITION": int64(3), "DATA_TYPE": "int"},
		},
		CollectionIndexes + "/t": {
			{"INDEX_NAME": "pk_t", "IS_UNIQUE": true, "PRIMARY_KEY": true, "COLUMN_NAME": "id"},
			{"INDEX_NAME": "ix_geo", "NON_UNIQUE": true},
		},
		CollectionIndexColumns + "/t": {
			{"INDEX_NAME": "ix_geo", "COLUMN_NAME": "city", "ORDINAL_POSITION": int64(2)},
			{"INDEX_NAME": "ix_geo", "COLUMN_NAME": "region", "ORDINAL_POSITION": int64(1)},
		},
		CollectionDataTypes: {},
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	table := tables[0]

	require.Len(t, table.Indexes, 2)
	pk := table.Indexes[0]
	assert.True(t, pk.IsUnique)
	assert.Equal(t, []string{"id"}, pk.Columns)
	assert.True(t, table.Column("id").IsPrimary)

	geo := table.Indexes[1]
	assert.False(t, geo.IsUnique)
	// Separate IndexColumns rows are ordered by ordinal.
	assert.Equal(t, []string{"region", "city"}, geo.Columns)
}

func TestMissingIndexCollectionsAreQuietlyAbsent(t *testing.T) {
	src := &fakeSource{collections: map[string][]Row{
		CollectionTables: {{"TABLE_NAME": "t"}},
		CollectionColumns + "/t": {
			{"COLUMN_NAME": "id", "ORDINAL_POSITION": int64(1), "DATA_TYPE": "int"},
		},
		CollectionDataTypes: {},
		// No Indexes/IndexColumns: fakeSource answers ErrCollectionUnsupported.
	}}

	tables, err := newReaderForTest(t, src).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables[0].Indexes)
	assert.Len(t, tables[0].Columns, 1)
}
