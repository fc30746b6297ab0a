package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type sqlServer struct{}

var sqlServerKeywords = makeKeywordSet("TOP", "IDENTITY", "MERGE", "OVER", "PERCENT", "PIVOT", "ROWCOUNT", "TEXTSIZE")

func (d *sqlServer) Name() string             { return SQLServer }
func (d *sqlServer) MaxTextLength() int64     { return 1073741823 } // nvarchar(max) characters
func (d *sqlServer) LongTextThreshold() int64 { return 8000 }
func (d *sqlServer) DriverName() string       { return "sqlserver" }
func (d *sqlServer) IdentitySQL() string      { return "SELECT CAST(SCOPE_IDENTITY() AS bigint)" }

func (d *sqlServer) IsKeyword(name string) bool { return isKeyword(sqlServerKeywords, name) }

func (d *sqlServer) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Paginate wraps the query in a ROW_NUMBER window, the portable form for
// SQL Server 2005+. Without a key column the window orders by a constant,
// which keeps engine order.
func (d *sqlServer) Paginate(sql string, offset, limit int, keyColumn string) string {
	orderBy := "(SELECT NULL)"
	if keyColumn != "" {
		orderBy = d.QuoteIdentifier(keyColumn)
	}
	return fmt.Sprintf(
		"SELECT * FROM (SELECT ROW_NUMBER() OVER (ORDER BY %s) AS _rn, _q.* FROM (%s) AS _q) AS _w WHERE _rn BETWEEN %d AND %d",
		orderBy, sql, offset+1, offset+limit)
}

func (d *sqlServer) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT t.name AS TABLE_NAME, SCHEMA_NAME(t.schema_id) AS TABLE_SCHEMA, 'BASE TABLE' AS TABLE_TYPE
FROM sys.tables t WHERE t.is_ms_shipped = 0
UNION ALL
SELECT v.name, SCHEMA_NAME(v.schema_id), 'VIEW'
FROM sys.views v WHERE v.is_ms_shipped = 0
ORDER BY TABLE_NAME`, true
	case "Columns":
		return fillTable(`
SELECT
    c.name AS COLUMN_NAME,
    tp.name AS DATA_TYPE,
    c.is_nullable AS IS_NULLABLE,
    c.column_id AS ORDINAL_POSITION,
    COLUMNPROPERTY(c.object_id, c.name, 'charmaxlen') AS CHARACTER_MAXIMUM_LENGTH,
    c.max_length AS CHARACTER_OCTET_LENGTH,
    c.precision AS NUMERIC_PRECISION,
    c.scale AS NUMERIC_SCALE,
    c.is_identity AS IS_IDENTITY,
    CASE WHEN pk.column_id IS NOT NULL THEN 1 ELSE 0 END AS IS_PRIMARY_KEY,
    OBJECT_DEFINITION(c.default_object_id) AS COLUMN_DEFAULT
FROM sys.columns c
INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
LEFT JOIN (
    SELECT ic.object_id, ic.column_id
    FROM sys.index_columns ic
    INNER JOIN sys.indexes i ON ic.object_id = i.object_id AND ic.index_id = i.index_id
    WHERE i.is_primary_key = 1
) pk ON c.object_id = pk.object_id AND c.column_id = pk.column_id
WHERE c.object_id = OBJECT_ID(N'{table}')
ORDER BY c.column_id`, table), true
	case "Indexes":
		return fillTable(`
SELECT
    i.name AS INDEX_NAME,
    i.is_unique AS IS_UNIQUE,
    i.is_primary_key AS PRIMARY_KEY,
    COL_NAME(ic.object_id, ic.column_id) AS COLUMN_NAME,
    ic.key_ordinal AS ORDINAL_POSITION
FROM sys.indexes i
INNER JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
WHERE i.object_id = OBJECT_ID(N'{table}') AND i.name IS NOT NULL
ORDER BY i.name, ic.key_ordinal`, table), true
	default:
		return "", false
	}
}

func (d *sqlServer) Capabilities() []schema.DataTypeCapability { return loadCapabilities(SQLServer) }
