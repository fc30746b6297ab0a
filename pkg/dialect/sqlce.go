package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type sqlCe struct{}

var sqlCeKeywords = makeKeywordSet("TOP", "IDENTITY", "ROWGUIDCOL", "NTEXT")

func (d *sqlCe) Name() string             { return SqlCe }
func (d *sqlCe) MaxTextLength() int64     { return 536870911 } // ntext characters
func (d *sqlCe) LongTextThreshold() int64 { return 4000 }
func (d *sqlCe) DriverName() string       { return "odbc" }
func (d *sqlCe) IdentitySQL() string      { return "SELECT @@IDENTITY" }

func (d *sqlCe) IsKeyword(name string) bool { return isKeyword(sqlCeKeywords, name) }

func (d *sqlCe) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Compact editions predate OFFSET/FETCH; pagination uses the same
// TOP / NOT IN carve-out as Jet.
func (d *sqlCe) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn == "" {
		return fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _q", offset+limit, sql)
	}
	key := d.QuoteIdentifier(keyColumn)
	return fmt.Sprintf(
		"SELECT TOP (%d) * FROM (%s) AS _q WHERE %s NOT IN (SELECT TOP (%d) %s FROM (%s) AS _s ORDER BY %s) ORDER BY %s",
		limit, sql, key, offset, key, sql, key, key)
}

func (d *sqlCe) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT TABLE_NAME, TABLE_TYPE
FROM INFORMATION_SCHEMA.TABLES
ORDER BY TABLE_NAME`, true
	case "Columns":
		return fillTable(`
SELECT
    COLUMN_NAME,
    DATA_TYPE,
    IS_NULLABLE,
    ORDINAL_POSITION,
    CHARACTER_MAXIMUM_LENGTH,
    CHARACTER_OCTET_LENGTH,
    NUMERIC_PRECISION,
    NUMERIC_SCALE,
    COLUMN_DEFAULT,
    CASE WHEN AUTOINC_SEED IS NOT NULL THEN 1 ELSE 0 END AS IS_IDENTITY
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_NAME = '{table}'
ORDER BY ORDINAL_POSITION`, table), true
	case "Indexes":
		return fillTable(`
SELECT
    INDEX_NAME,
    [UNIQUE] AS IS_UNIQUE,
    PRIMARY_KEY,
    COLUMN_NAME,
    ORDINAL_POSITION
FROM INFORMATION_SCHEMA.INDEXES
WHERE TABLE_NAME = '{table}'
ORDER BY INDEX_NAME, ORDINAL_POSITION`, table), true
	default:
		return "", false
	}
}

func (d *sqlCe) Capabilities() []schema.DataTypeCapability { return loadCapabilities(SqlCe) }
