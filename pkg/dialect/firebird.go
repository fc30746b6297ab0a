package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type firebird struct{}

var firebirdKeywords = makeKeywordSet("BLOB", "GDSCODE", "GEN_ID", "POSITION", "RDB$DB_KEY", "ROWS", "SQLCODE", "VARIABLE")

func (d *firebird) Name() string             { return Firebird }
func (d *firebird) MaxTextLength() int64     { return 2147483647 } // BLOB SUB_TYPE TEXT
func (d *firebird) LongTextThreshold() int64 { return 32765 }
func (d *firebird) DriverName() string       { return "odbc" }

// Identity values come from named generators; nothing connection-scoped
// to read after an insert.
func (d *firebird) IdentitySQL() string { return "" }

func (d *firebird) IsKeyword(name string) bool { return isKeyword(firebirdKeywords, name) }

func (d *firebird) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Paginate uses the ROWS m TO n clause (Firebird 2.0+), one-based and
// inclusive on both ends.
func (d *firebird) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn != "" {
		return fmt.Sprintf("%s ORDER BY %s ROWS %d TO %d", sql, d.QuoteIdentifier(keyColumn), offset+1, offset+limit)
	}
	return fmt.Sprintf("%s ROWS %d TO %d", sql, offset+1, offset+limit)
}

func (d *firebird) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT TRIM(RDB$RELATION_NAME) AS TABLE_NAME,
       CASE WHEN RDB$VIEW_BLR IS NULL THEN 'BASE TABLE' ELSE 'VIEW' END AS TABLE_TYPE
FROM RDB$RELATIONS
WHERE COALESCE(RDB$SYSTEM_FLAG, 0) = 0
ORDER BY RDB$RELATION_NAME`, true
	case "Columns":
		return fillTable(`
SELECT
    TRIM(rf.RDB$FIELD_NAME) AS COLUMN_NAME,
    TRIM(t.RDB$TYPE_NAME) AS DATA_TYPE,
    rf.RDB$FIELD_POSITION + 1 AS ORDINAL_POSITION,
    CASE WHEN COALESCE(rf.RDB$NULL_FLAG, 0) = 0 THEN 1 ELSE 0 END AS IS_NULLABLE,
    f.RDB$CHARACTER_LENGTH AS CHARACTER_MAXIMUM_LENGTH,
    f.RDB$FIELD_LENGTH AS CHARACTER_OCTET_LENGTH,
    f.RDB$FIELD_PRECISION AS NUMERIC_PRECISION,
    ABS(COALESCE(f.RDB$FIELD_SCALE, 0)) AS NUMERIC_SCALE,
    rf.RDB$DEFAULT_SOURCE AS COLUMN_DEFAULT,
    CASE WHEN pk.RDB$FIELD_NAME IS NOT NULL THEN 1 ELSE 0 END AS IS_PRIMARY_KEY
FROM RDB$RELATION_FIELDS rf
JOIN RDB$FIELDS f ON rf.RDB$FIELD_SOURCE = f.RDB$FIELD_NAME
LEFT JOIN RDB$TYPES t ON t.RDB$TYPE = f.RDB$FIELD_TYPE AND t.RDB$FIELD_NAME = 'RDB$FIELD_TYPE'
LEFT JOIN (
    SELECT sg.RDB$FIELD_NAME, rc.RDB$RELATION_NAME
    FROM RDB$RELATION_CONSTRAINTS rc
    JOIN RDB$INDEX_SEGMENTS sg ON rc.RDB$INDEX_NAME = sg.RDB$INDEX_NAME
    WHERE rc.RDB$CONSTRAINT_TYPE = 'PRIMARY KEY'
) pk ON pk.RDB$RELATION_NAME = rf.RDB$RELATION_NAME AND pk.RDB$FIELD_NAME = rf.RDB$FIELD_NAME
WHERE rf.RDB$RELATION_NAME = '{table}'
ORDER BY rf.RDB$FIELD_POSITION`, table), true
	case "Indexes":
		return fillTable(`
SELECT TRIM(RDB$INDEX_NAME) AS INDEX_NAME,
       COALESCE(RDB$UNIQUE_FLAG, 0) AS IS_UNIQUE
FROM RDB$INDICES
WHERE RDB$RELATION_NAME = '{table}' AND COALESCE(RDB$SYSTEM_FLAG, 0) = 0
ORDER BY RDB$INDEX_NAME`, table), true
	case "IndexColumns":
		return fillTable(`
SELECT TRIM(i.RDB$INDEX_NAME) AS INDEX_NAME,
       TRIM(s.RDB$FIELD_NAME) AS COLUMN_NAME,
       s.RDB$FIELD_POSITION + 1 AS ORDINAL_POSITION
FROM RDB$INDICES i
JOIN RDB$INDEX_SEGMENTS s ON i.RDB$INDEX_NAME = s.RDB$INDEX_NAME
WHERE i.RDB$RELATION_NAME = '{table}' AND COALESCE(i.RDB$SYSTEM_FLAG, 0) = 0
ORDER BY i.RDB$INDEX_NAME, s.RDB$FIELD_POSITION`, table), true
	default:
		return "", false
	}
}

func (d *firebird) Capabilities() []schema.DataTypeCapability { return loadCapabilities(Firebird) }
