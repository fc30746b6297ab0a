package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/omnidal-io/omnidal/pkg/apperrors"
)

// Native collection names, as exposed by the execution collaborator.
const (
	CollectionTables       = "Tables"
	CollectionColumns      = "Columns"
	CollectionIndexes      = "Indexes"
	CollectionIndexColumns = "IndexColumns"
	CollectionDataTypes    = "DataTypes"
)

// CollectionSource supplies native schema collections as tabular rows with
// provider-specific field naming. tableFilter narrows per-table collections;
// it is empty for Tables and DataTypes.
type CollectionSource interface {
	SchemaCollection(ctx context.Context, collection, tableFilter string) ([]Row, error)
}

// Reader normalizes a database's native schema collections into the
// dialect-independent table model. One Reader performs one read pass;
// the resulting table list is a snapshot.
type Reader struct {
	src     CollectionSource
	dialect DialectInfo
	logger  *zap.Logger
}

// NewReader creates a schema reader. A nil logger is replaced with a no-op.
func NewReader(src CollectionSource, dialect DialectInfo, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{src: src, dialect: dialect, logger: logger}
}

// Read runs one full normalization pass:
// table collection → per-table columns and indexes → per-table fix-up →
// relationship inference → per-table fix-up again.
//
// Failure to enumerate the table collection is fatal for the pass. Failure
// to read one table's columns or indexes is logged and that table keeps
// whatever was read before the failure.
func (r *Reader) Read(ctx context.Context) ([]*Table, error) {
	tableRows, err := r.src.SchemaCollection(ctx, CollectionTables, "")
	if errors.Is(err, apperrors.ErrCollectionUnsupported) {
		// Engine exposes no queryable catalog at all (Jet over ODBC).
		r.logger.Warn("table catalog unsupported, schema snapshot is empty",
			zap.String("dialect", r.dialect.Name()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate tables: %v", apperrors.ErrSchemaRead, err)
	}

	mapper := r.loadTypeMapper(ctx)

	var tables []*Table
	for _, row := range tableRows {
		name, ok := row.String("TABLE_NAME", "table_name", "name")
		if !ok || name == "" {
			continue
		}
		t := &Table{
			Name:    name,
			ID:      len(tables) + 1,
			Dialect: r.dialect.Name(),
		}
		t.Owner, _ = row.String("TABLE_SCHEMA", "table_schema", "TABLE_OWNER", "owner")
		t.Description, _ = row.String("DESCRIPTION", "REMARKS", "table_comment", "description")
		if typ, ok := row.String("TABLE_TYPE", "table_type", "type"); ok {
			t.IsView = strings.Contains(strings.ToUpper(typ), "VIEW")
		}
		tables = append(tables, t)
	}

	for _, t := range tables {
		if err := r.readColumns(ctx, t, mapper); err != nil {
			r.logger.Warn("column read failed, keeping partial table",
				zap.String("table", t.Name),
				zap.Error(err))
		}
		if err := r.readIndexes(ctx, t); err != nil {
			r.logger.Warn("index read failed, keeping partial table",
				zap.String("table", t.Name),
				zap.Error(err))
		}
		r.fixTable(t)
	}

	FixRelationships(tables)

	// Relationship inference may have touched columns; run the internal
	// fix-up once more. fixTable is idempotent.
	for _, t := range tables {
		r.fixTable(t)
	}

	return tables, nil
}

// loadTypeMapper builds the type mapper from the provider's DataTypes
// collection. An unreadable catalog is not fatal: semantics simply stay
// unresolved.
func (r *Reader) loadTypeMapper(ctx context.Context) *TypeMapper {
	rows, err := r.src.SchemaCollection(ctx, CollectionDataTypes, "")
	if err != nil {
		r.logger.Warn("data type catalog unavailable, type semantics will be unresolved",
			zap.String("dialect", r.dialect.Name()),
			zap.Error(err))
		return NewTypeMapper(nil, r.dialect)
	}
	return NewTypeMapper(CapabilitiesFromRows(rows), r.dialect)
}

func (r *Reader) readColumns(ctx context.Context, t *Table, mapper *TypeMapper) error {
	rows, err := r.src.SchemaCollection(ctx, CollectionColumns, t.Name)
	if err != nil {
		return err
	}

	for _, row := range rows {
		name, ok := row.String("COLUMN_NAME", "column_name", "name")
		if !ok || name == "" {
			continue
		}

		col := &Column{Name: name, SafeName: name, Table: t}
		ordinal, _ := row.Int64("ORDINAL_POSITION", "ordinal_position", "column_id", "cid")
		col.ID = int(ordinal)

		col.RawType, _ = row.String("DATA_TYPE", "data_type", "type_name", "type")
		col.IsNullable, _ = row.Bool("IS_NULLABLE", "is_nullable", "nullable")
		if notNull, ok := row.Bool("NOT_NULL", "notnull"); ok {
			col.IsNullable = !notNull
		}
		col.IsIdentity, _ = row.Bool("IS_IDENTITY", "is_identity", "autoincrement", "EXTRA")
		col.IsPrimary, _ = row.Bool("IS_PRIMARY_KEY", "is_primary_key", "pk", "primary_key")
		if key, ok := row.String("COLUMN_KEY", "column_key"); ok && strings.EqualFold(key, "PRI") {
			col.IsPrimary = true
		}
		col.Default, _ = row.String("COLUMN_DEFAULT", "column_default", "dflt_value", "default")
		col.Description, _ = row.String("DESCRIPTION", "REMARKS", "column_comment", "comment")

		col.Length, _ = row.Int64("CHARACTER_MAXIMUM_LENGTH", "character_maximum_length", "length", "max_length")
		col.ByteLength, _ = row.Int64("CHARACTER_OCTET_LENGTH", "character_octet_length", "byte_length")
		col.Precision, _ = row.Int64("NUMERIC_PRECISION", "numeric_precision", "precision")
		col.Scale, _ = row.Int64("NUMERIC_SCALE", "numeric_scale", "scale")

		// Length defaults to precision when the provider reports none.
		if col.Length == 0 {
			col.Length = col.Precision
		}

		cap := r.resolveType(col, mapper)
		if cap != nil {
			col.IsUnicode = cap.IsUnicode
		}

		// Byte length defaults to the character length.
		if col.ByteLength == 0 {
			col.ByteLength = col.Length
		}

		t.Columns = append(t.Columns, col)
	}
	return nil
}

// resolveType assigns the semantic type, formatted type string, and the
// unbounded-text length fallback for one column.
func (r *Reader) resolveType(col *Column, mapper *TypeMapper) *DataTypeCapability {
	if col.RawType == "" {
		return nil
	}
	sem, cap := mapper.Resolve(col.RawType, col.Length)
	col.Semantic = sem

	// Unresolved string lengths fall back to the dialect maximum,
	// effectively "unbounded text".
	if sem == SemanticText && col.Length <= 0 {
		col.Length = r.dialect.MaxTextLength()
	}

	col.Formatted = mapper.Format(col.RawType, cap, col.Length, col.Precision, col.Scale)
	return cap
}

func (r *Reader) readIndexes(ctx context.Context, t *Table) error {
	rows, err := r.src.SchemaCollection(ctx, CollectionIndexes, t.Name)
	if errors.Is(err, apperrors.ErrCollectionUnsupported) {
		// Engine exposes no index catalog; not a partial read.
		return nil
	}
	if err != nil {
		return err
	}

	byName := make(map[string]*Index)
	for _, row := range rows {
		name, ok := row.String("INDEX_NAME", "index_name", "name")
		if !ok || name == "" {
			continue
		}
		idx, seen := byName[name]
		if !seen {
			idx = &Index{Name: name}
			if unique, ok := row.Bool("UNIQUE", "IS_UNIQUE", "is_unique", "unique"); ok {
				idx.IsUnique = unique
			} else if nonUnique, ok := row.Bool("NON_UNIQUE", "non_unique"); ok {
				idx.IsUnique = !nonUnique
			}
			byName[name] = idx
			t.Indexes = append(t.Indexes, idx)
		}
		// Some providers inline the column into the index rows.
		if colName, ok := row.String("COLUMN_NAME", "column_name"); ok && colName != "" {
			idx.Columns = append(idx.Columns, colName)
		}
		if primary, ok := row.Bool("PRIMARY_KEY", "primary_key", "is_primary_key"); ok && primary {
			if colName, ok := row.String("COLUMN_NAME", "column_name"); ok {
				if c := t.Column(colName); c != nil {
					c.IsPrimary = true
				}
			}
		}
	}

	// IndexColumns is a separate collection for providers that report
	// index membership apart from the index list. Engines that inline the
	// columns into the index rows don't have one.
	icRows, err := r.src.SchemaCollection(ctx, CollectionIndexColumns, t.Name)
	if errors.Is(err, apperrors.ErrCollectionUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	type member struct {
		index   string
		column  string
		ordinal int64
	}
	var members []member
	for _, row := range icRows {
		idxName, ok := row.String("INDEX_NAME", "index_name")
		if !ok {
			continue
		}
		colName, ok := row.String("COLUMN_NAME", "column_name")
		if !ok {
			continue
		}
		ord, _ := row.Int64("ORDINAL_POSITION", "ordinal_position", "seqno")
		members = append(members, member{index: idxName, column: colName, ordinal: ord})
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].ordinal < members[j].ordinal })
	for _, m := range members {
		idx := byName[m.index]
		if idx == nil {
			idx = &Index{Name: m.index}
			byName[m.index] = idx
			t.Indexes = append(t.Indexes, idx)
		}
		if !containsFold(idx.Columns, m.column) {
			idx.Columns = append(idx.Columns, m.column)
		}
	}

	return nil
}

// fixTable assigns column ids, deduplicates column names, and escapes
// keyword collisions. Safe to run more than once.
func (r *Reader) fixTable(t *Table) {
	// Non-zero source ordinals are kept verbatim; zero-reporting columns
	// get their encounter order + 1. A table whose rows all report zero
	// therefore numbers 1..N uniformly; mixed reporting must not crash.
	for i, col := range t.Columns {
		if col.ID == 0 {
			col.ID = i + 1
		}
	}

	seen := make(map[string]*Column, len(t.Columns))
	for _, col := range t.Columns {
		key := strings.ToLower(col.Name)
		if _, dup := seen[key]; dup {
			col.Name = col.Name + "_" + strconv.Itoa(col.ID)
			key = strings.ToLower(col.Name)
		}
		seen[key] = col

		if r.dialect.IsKeyword(col.Name) {
			col.SafeName = r.dialect.QuoteIdentifier(col.Name)
		} else {
			col.SafeName = col.Name
		}
	}
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if equalFold(s, v) {
			return true
		}
	}
	return false
}
