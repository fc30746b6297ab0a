package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type postgres struct{}

var postgresKeywords = makeKeywordSet("ANALYZE", "ARRAY", "CURRENT_SCHEMA", "ILIKE", "LIMIT", "OFFSET", "RETURNING", "VERBOSE")

func (d *postgres) Name() string             { return PostgreSQL }
func (d *postgres) MaxTextLength() int64     { return 1073741823 }
func (d *postgres) LongTextThreshold() int64 { return 10485760 } // varchar length ceiling
func (d *postgres) DriverName() string       { return "pgx" }
func (d *postgres) IdentitySQL() string      { return "SELECT LASTVAL()" }

func (d *postgres) IsKeyword(name string) bool { return isKeyword(postgresKeywords, name) }

func (d *postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *postgres) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn != "" {
		return fmt.Sprintf("%s ORDER BY %s LIMIT %d OFFSET %d", sql, d.QuoteIdentifier(keyColumn), limit, offset)
	}
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, limit, offset)
}

func (d *postgres) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT table_name, table_schema, table_type
FROM information_schema.tables
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`, true
	case "Columns":
		return fillTable(`
SELECT
    c.column_name,
    c.data_type,
    c.is_nullable,
    c.ordinal_position,
    c.character_maximum_length,
    c.character_octet_length,
    c.numeric_precision,
    c.numeric_scale,
    c.column_default,
    CASE WHEN c.column_default LIKE 'nextval(%' OR c.is_identity = 'YES' THEN 1 ELSE 0 END AS is_identity,
    CASE WHEN pk.column_name IS NOT NULL THEN 1 ELSE 0 END AS is_primary_key
FROM information_schema.columns c
LEFT JOIN (
    SELECT kcu.table_schema, kcu.table_name, kcu.column_name
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
    WHERE tc.constraint_type = 'PRIMARY KEY'
) pk ON pk.table_schema = c.table_schema AND pk.table_name = c.table_name AND pk.column_name = c.column_name
WHERE c.table_name = '{table}'
ORDER BY c.ordinal_position`, table), true
	case "Indexes":
		return fillTable(`
SELECT
    i.relname AS index_name,
    ix.indisunique AS is_unique,
    ix.indisprimary AS primary_key,
    a.attname AS column_name,
    array_position(ix.indkey, a.attnum) AS ordinal_position
FROM pg_class t
JOIN pg_index ix ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
WHERE t.relname = '{table}'
ORDER BY index_name, ordinal_position`, table), true
	default:
		return "", false
	}
}

func (d *postgres) Capabilities() []schema.DataTypeCapability { return loadCapabilities(PostgreSQL) }
