package dialect

import (
	"strings"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

// Supported dialect names. The set is closed: dialects are compiled in and
// selected by the resolver's lookup table, never loaded dynamically.
const (
	SQLServer  = "sqlserver"
	MySQL      = "mysql"
	Oracle     = "oracle"
	SQLite     = "sqlite"
	PostgreSQL = "postgres"
	Access     = "access"
	SqlCe      = "sqlce"
	Firebird   = "firebird"
)

// Dialect captures one database engine's SQL syntax and introspection
// conventions. Implementations are stateless singletons.
type Dialect interface {
	// Name is the dialect tag. Also satisfies schema.DialectInfo.
	Name() string

	// QuoteIdentifier escapes an identifier for this dialect.
	QuoteIdentifier(name string) string

	// IsKeyword reports whether a name collides with a reserved word.
	IsKeyword(name string) bool

	// MaxTextLength is the fallback length for unbounded text columns.
	MaxTextLength() int64

	// LongTextThreshold is the declared length above which text requires
	// a long-text capable type.
	LongTextThreshold() int64

	// Paginate rewrites a query into this dialect's pagination syntax.
	// keyColumn may be empty; dialects that need a sort key fall back to
	// an engine-specific stable ordering.
	Paginate(sql string, offset, limit int, keyColumn string) string

	// IdentitySQL is the statement that reads the last generated identity
	// on the current connection. Empty when the engine has no equivalent.
	IdentitySQL() string

	// DriverName is the database/sql driver this dialect connects through.
	DriverName() string

	// CollectionQuery returns the native introspection SQL for a schema
	// collection (Tables, Columns, Indexes, IndexColumns), with the table
	// filter already embedded. ok is false when the engine exposes no
	// query for that collection.
	CollectionQuery(collection, table string) (sql string, ok bool)

	// Capabilities is the built-in data type catalog used when the
	// provider exposes no DataTypes collection of its own.
	Capabilities() []schema.DataTypeCapability
}

// Get returns the dialect registered under name.
func Get(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// All lists the supported dialect names.
func All() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	return names
}

var dialects = map[string]Dialect{
	SQLServer:  &sqlServer{},
	MySQL:      &mySQL{},
	Oracle:     &oracle{},
	SQLite:     &sqlite{},
	PostgreSQL: &postgres{},
	Access:     &access{},
	SqlCe:      &sqlCe{},
	Firebird:   &firebird{},
}

// ansiKeywords is the shared reserved word set; dialects add their own.
var ansiKeywords = makeKeywordSet(
	"ALL", "AND", "AS", "ASC", "BETWEEN", "BY", "CASE", "CHECK",
	"CONSTRAINT", "DATE", "DEFAULT", "DELETE", "DESC", "ELSE", "END",
	"EXISTS", "FROM", "GROUP", "IN", "INDEX", "INNER", "INSERT", "INTO",
	"IS", "JOIN", "KEY", "LEFT", "LEVEL", "LIKE", "NOT", "NULL", "ON",
	"OR", "ORDER", "OUTER", "PRIMARY", "RIGHT", "SELECT", "SET", "TABLE",
	"THEN", "TIME", "TIMESTAMP", "UNION", "UPDATE", "USER", "VALUES",
	"WHEN", "WHERE",
)

func makeKeywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToUpper(w)] = struct{}{}
	}
	return set
}

func isKeyword(set map[string]struct{}, name string) bool {
	if _, ok := ansiKeywords[strings.ToUpper(name)]; ok {
		return true
	}
	_, ok := set[strings.ToUpper(name)]
	return ok
}

// escapeLiteral doubles single quotes for embedding a value in a SQL
// string literal (introspection queries only; data paths use parameters).
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// fillTable substitutes the {table} placeholder in an introspection query
// template with an escaped literal.
func fillTable(template, table string) string {
	return strings.ReplaceAll(template, "{table}", escapeLiteral(table))
}

// Compile-time check: every dialect satisfies the normalization engine's
// view of a dialect.
var _ schema.DialectInfo = Dialect(nil)
