package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type sqlite struct{}

var sqliteKeywords = makeKeywordSet("ABORT", "AUTOINCREMENT", "GLOB", "LIMIT", "OFFSET", "PRAGMA", "REINDEX", "ROWID", "VACUUM")

func (d *sqlite) Name() string             { return SQLite }
func (d *sqlite) MaxTextLength() int64     { return 1000000000 }
func (d *sqlite) LongTextThreshold() int64 { return 1000000000 } // TEXT is always unbounded
func (d *sqlite) DriverName() string       { return "sqlite" }
func (d *sqlite) IdentitySQL() string      { return "SELECT last_insert_rowid()" }

func (d *sqlite) IsKeyword(name string) bool { return isKeyword(sqliteKeywords, name) }

func (d *sqlite) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *sqlite) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn != "" {
		return fmt.Sprintf("%s ORDER BY %s LIMIT %d OFFSET %d", sql, d.QuoteIdentifier(keyColumn), limit, offset)
	}
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, limit, offset)
}

func (d *sqlite) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT name AS table_name,
       CASE type WHEN 'view' THEN 'VIEW' ELSE 'BASE TABLE' END AS table_type
FROM sqlite_master
WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
ORDER BY name`, true
	case "Columns":
		// cid is zero-based; report one-based ordinals like other engines.
		return fillTable(`
SELECT
    name AS column_name,
    type AS data_type,
    cid + 1 AS ordinal_position,
    "notnull" AS not_null,
    dflt_value AS column_default,
    pk AS is_primary_key
FROM pragma_table_info('{table}')
ORDER BY cid`, table), true
	case "Indexes":
		return fillTable(`
SELECT name AS index_name, "unique" AS is_unique
FROM pragma_index_list('{table}')
ORDER BY seq`, table), true
	case "IndexColumns":
		return fillTable(`
SELECT il.name AS index_name, ii.name AS column_name, ii.seqno AS ordinal_position
FROM pragma_index_list('{table}') il, pragma_index_info(il.name) ii
ORDER BY il.name, ii.seqno`, table), true
	default:
		return "", false
	}
}

func (d *sqlite) Capabilities() []schema.DataTypeCapability { return loadCapabilities(SQLite) }
