package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type oracle struct{}

var oracleKeywords = makeKeywordSet("ACCESS", "AUDIT", "COMMENT", "CONNECT", "MINUS", "MODE", "NUMBER", "ROWNUM", "SYSDATE", "VARCHAR2")

func (d *oracle) Name() string             { return Oracle }
func (d *oracle) MaxTextLength() int64     { return 2147483647 } // CLOB
func (d *oracle) LongTextThreshold() int64 { return 4000 }
func (d *oracle) DriverName() string       { return "odbc" }

// Oracle sequences are named objects; there is no connection-scoped
// "last identity" statement to run blind.
func (d *oracle) IdentitySQL() string { return "" }

func (d *oracle) IsKeyword(name string) bool { return isKeyword(oracleKeywords, name) }

func (d *oracle) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Paginate uses the classic double-wrapped ROWNUM form, which works on
// every Oracle release the ODBC bridge can reach.
func (d *oracle) Paginate(sql string, offset, limit int, keyColumn string) string {
	inner := sql
	if keyColumn != "" {
		inner = fmt.Sprintf("%s ORDER BY %s", sql, d.QuoteIdentifier(keyColumn))
	}
	return fmt.Sprintf(
		"SELECT * FROM (SELECT _q.*, ROWNUM AS _rn FROM (%s) _q WHERE ROWNUM <= %d) WHERE _rn > %d",
		inner, offset+limit, offset)
}

func (d *oracle) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT TABLE_NAME, 'BASE TABLE' AS TABLE_TYPE FROM USER_TABLES
UNION ALL
SELECT VIEW_NAME, 'VIEW' FROM USER_VIEWS
ORDER BY TABLE_NAME`, true
	case "Columns":
		return fillTable(`
SELECT
    c.COLUMN_NAME,
    c.DATA_TYPE,
    c.COLUMN_ID AS ORDINAL_POSITION,
    CASE c.NULLABLE WHEN 'Y' THEN 1 ELSE 0 END AS IS_NULLABLE,
    c.CHAR_LENGTH AS CHARACTER_MAXIMUM_LENGTH,
    c.DATA_LENGTH AS CHARACTER_OCTET_LENGTH,
    c.DATA_PRECISION AS NUMERIC_PRECISION,
    c.DATA_SCALE AS NUMERIC_SCALE,
    c.DATA_DEFAULT AS COLUMN_DEFAULT,
    CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END AS IS_PRIMARY_KEY
FROM USER_TAB_COLUMNS c
LEFT JOIN (
    SELECT cc.COLUMN_NAME, cc.TABLE_NAME
    FROM USER_CONSTRAINTS uc
    JOIN USER_CONS_COLUMNS cc ON uc.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) pk ON pk.TABLE_NAME = c.TABLE_NAME AND pk.COLUMN_NAME = c.COLUMN_NAME
WHERE c.TABLE_NAME = '{table}'
ORDER BY c.COLUMN_ID`, table), true
	case "Indexes":
		return fillTable(`
SELECT INDEX_NAME, CASE UNIQUENESS WHEN 'UNIQUE' THEN 1 ELSE 0 END AS IS_UNIQUE
FROM USER_INDEXES
WHERE TABLE_NAME = '{table}'
ORDER BY INDEX_NAME`, table), true
	case "IndexColumns":
		return fillTable(`
SELECT INDEX_NAME, COLUMN_NAME, COLUMN_POSITION AS ORDINAL_POSITION
FROM USER_IND_COLUMNS
WHERE TABLE_NAME = '{table}'
ORDER BY INDEX_NAME, COLUMN_POSITION`, table), true
	default:
		return "", false
	}
}

func (d *oracle) Capabilities() []schema.DataTypeCapability { return loadCapabilities(Oracle) }
