package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

type access struct{}

var accessKeywords = makeKeywordSet("AUTOINCREMENT", "COUNTER", "CURRENCY", "DISTINCTROW", "IIF", "MEMO", "OLEOBJECT", "TOP", "YESNO")

func (d *access) Name() string             { return Access }
func (d *access) MaxTextLength() int64     { return 1073741823 } // MEMO
func (d *access) LongTextThreshold() int64 { return 255 }
func (d *access) DriverName() string       { return "odbc" }
func (d *access) IdentitySQL() string      { return "SELECT @@IDENTITY" }

func (d *access) IsKeyword(name string) bool { return isKeyword(accessKeywords, name) }

func (d *access) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Jet has no OFFSET. With a key column the page is carved out with the
// TOP / NOT IN idiom; without one only a best-effort TOP over the whole
// window is possible and the caller skips rows client-side.
func (d *access) Paginate(sql string, offset, limit int, keyColumn string) string {
	if keyColumn == "" {
		return fmt.Sprintf("SELECT TOP %d * FROM (%s) AS _q", offset+limit, sql)
	}
	key := d.QuoteIdentifier(keyColumn)
	return fmt.Sprintf(
		"SELECT TOP %d * FROM (%s) AS _q WHERE %s NOT IN (SELECT TOP %d %s FROM (%s) AS _s ORDER BY %s) ORDER BY %s",
		limit, sql, key, offset, key, sql, key, key)
}

// Jet exposes its catalog through driver metadata calls, not queryable
// system tables. Discovery for this dialect goes through the ODBC
// catalog functions instead.
func (d *access) CollectionQuery(collection, table string) (string, bool) {
	return "", false
}

func (d *access) Capabilities() []schema.DataTypeCapability { return loadCapabilities(Access) }
