package schema

// Semantic identifies the dialect-independent meaning of a column type.
// An empty Semantic means the type mapper could not resolve the raw
// provider type; callers must tolerate that.
type Semantic string

const (
	SemanticUnknown  Semantic = ""
	SemanticBool     Semantic = "bool"
	SemanticInt8     Semantic = "int8"
	SemanticInt16    Semantic = "int16"
	SemanticInt32    Semantic = "int32"
	SemanticInt64    Semantic = "int64"
	SemanticFloat32  Semantic = "float32"
	SemanticFloat64  Semantic = "float64"
	SemanticDecimal  Semantic = "decimal"
	SemanticMoney    Semantic = "money"
	SemanticText     Semantic = "text"
	SemanticBinary   Semantic = "binary"
	SemanticDateTime Semantic = "datetime"
	SemanticDate     Semantic = "date"
	SemanticTime     Semantic = "time"
	SemanticGUID     Semantic = "guid"
)

// DialectInfo is the slice of dialect behavior the normalization engine
// needs. pkg/dialect implementations satisfy it.
type DialectInfo interface {
	// Name is the dialect tag recorded on normalized tables.
	Name() string

	// MaxTextLength is the fallback length for unbounded text columns.
	MaxTextLength() int64

	// LongTextThreshold is the declared length above which a text column
	// requires a long-text capable type.
	LongTextThreshold() int64

	// IsKeyword reports whether a name collides with a reserved word.
	IsKeyword(name string) bool

	// QuoteIdentifier escapes an identifier for this dialect.
	QuoteIdentifier(name string) string
}

// Table is the dialect-independent description of one table or view.
// A table list is a snapshot: replaced wholesale on refresh, never mutated
// after relationship fixing completes.
type Table struct {
	Name        string
	ID          int
	Description string
	Owner       string
	IsView      bool
	Dialect     string
	Columns     []*Column
	Indexes     []*Index
}

// Column describes one normalized column. Table is a non-owning
// back-reference to the column's owner.
type Column struct {
	ID          int
	Name        string
	SafeName    string // keyword-escaped form, equals Name when no escaping is needed
	Semantic    Semantic
	RawType     string // provider type string, kept verbatim
	Formatted   string // canonical type string with synthesized qualifier
	IsIdentity  bool
	IsPrimary   bool
	IsNullable  bool
	IsUnicode   bool
	Length      int64
	ByteLength  int64
	Precision   int64
	Scale       int64
	Default     string
	Description string

	Table *Table
	Ref   *Table // inferred relationship target, nil when none
}

// Index describes one normalized index.
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
}

// PrimaryKeys returns the table's primary key columns in column order.
func (t *Table) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.IsPrimary {
			pks = append(pks, c)
		}
	}
	return pks
}

// Column returns the named column, matched case-insensitively, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if equalFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// DataTypeCapability is one row of the provider-supplied data type catalog.
// Immutable once loaded for a context.
type DataTypeCapability struct {
	TypeName      string   `yaml:"type_name"`
	Semantic      Semantic `yaml:"semantic"`
	MaxSize       int64    `yaml:"max_size"`
	Params        string   `yaml:"params"` // create-format parameter template, e.g. "length" or "precision,scale"
	IsFixedLength bool     `yaml:"fixed_length"`
	IsLong        bool     `yaml:"long"`
	IsBestMatch   bool     `yaml:"best_match"`
	IsUnicode     bool     `yaml:"unicode"`
}
