package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type mySQL struct{}

var mySQLKeywords = makeKeywordSet("DATABASES", "DIV", "LIMIT", "REGEXP", "RLIKE", "SCHEMAS", "SEPARATOR", "SHOW", "STRAIGHT_JOIN")

func (d *mySQL) Name() string             { return MySQL }
func (d *mySQL) MaxTextLength() int64     { return 4294967295 } // longtext
func (d *mySQL) LongTextThreshold() int64 { return 65535 }
func (d *mySQL) DriverName() string       { return "mysql" }
func (d *mySQL) IdentitySQL() string      { return "SELECT LAST_INSERT_ID()" }

func (d *mySQL) IsKeyword(name string) bool { return isKeyword(mySQLKeywords, name) }

func (d *mySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *mySQL) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn != "" {
		return fmt.Sprintf("%s ORDER BY %s LIMIT %d OFFSET %d", sql, d.QuoteIdentifier(keyColumn), limit, offset)
	}
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, limit, offset)
}

func (d *mySQL) CollectionQuery(collection, table string) (string, bool) {
	switch collection {
	case "Tables":
		return `
SELECT TABLE_NAME, TABLE_SCHEMA, TABLE_TYPE, TABLE_COMMENT AS DESCRIPTION
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = DATABASE()
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
    COLUMN_KEY,
    CASE WHEN EXTRA LIKE '%auto_increment%' THEN 1 ELSE 0 END AS IS_IDENTITY,
    COLUMN_COMMENT AS DESCRIPTION
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '{table}'
ORDER BY ORDINAL_POSITION`, table), true
	case "Indexes":
		return fillTable(`
SELECT
    INDEX_NAME,
    NON_UNIQUE,
    COLUMN_NAME,
    SEQ_IN_INDEX AS ORDINAL_POSITION,
    CASE WHEN INDEX_NAME = 'PRIMARY' THEN 1 ELSE 0 END AS PRIMARY_KEY
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '{table}'
ORDER BY INDEX_NAME, SEQ_IN_INDEX`, table), true
	default:
		return "", false
	}
}

func (d *mySQL) Capabilities() []schema.DataTypeCapability { return loadCapabilities(MySQL) }
