package schema

import (
	"fmt"
	"sort"
	"strings"
)

// TypeMapper resolves provider-native type names to semantic types and
// canonical formatted type strings, using the provider-supplied capability
// catalog.
type TypeMapper struct {
	caps    []DataTypeCapability
	dialect DialectInfo
}

// NewTypeMapper builds a mapper over an immutable capability catalog.
func NewTypeMapper(caps []DataTypeCapability, dialect DialectInfo) *TypeMapper {
	return &TypeMapper{caps: caps, dialect: dialect}
}

// CapabilitiesFromRows parses a native DataTypes collection into capability
// rows. Field names follow the usual provider catalogs (TypeName, DataType,
// ColumnSize, CreateParameters, IsFixedLength, IsLong, IsBestMatch).
func CapabilitiesFromRows(rows []Row) []DataTypeCapability {
	caps := make([]DataTypeCapability, 0, len(rows))
	for _, row := range rows {
		name, ok := row.String("TypeName", "type_name", "name")
		if !ok || name == "" {
			continue
		}
		cap := DataTypeCapability{TypeName: name}
		if sem, ok := row.String("DataType", "data_type", "semantic"); ok {
			cap.Semantic = Semantic(strings.ToLower(sem))
		}
		cap.MaxSize, _ = row.Int64("ColumnSize", "column_size", "max_size")
		cap.Params, _ = row.String("CreateParameters", "create_parameters", "params")
		cap.IsFixedLength, _ = row.Bool("IsFixedLength", "is_fixed_length", "fixed_length")
		cap.IsLong, _ = row.Bool("IsLong", "is_long", "long")
		cap.IsBestMatch, _ = row.Bool("IsBestMatch", "is_best_match", "best_match")
		cap.IsUnicode, _ = row.Bool("IsUnicode", "is_unicode", "unicode")
		caps = append(caps, cap)
	}
	return caps
}

// Resolve maps a raw provider type name to its semantic type and the
// capability row that matched. Matching order, first match wins:
//
//  1. Exact match on the capability type name.
//  2. Match on the capability semantic column, filtered and tie-broken by
//     size and long-text rules.
//  3. No match: semantic type left unresolved. Not an error.
func (m *TypeMapper) Resolve(rawTypeName string, length int64) (Semantic, *DataTypeCapability) {
	base := baseTypeName(rawTypeName)

	for i := range m.caps {
		if equalFold(m.caps[i].TypeName, base) {
			return m.caps[i].Semantic, &m.caps[i]
		}
	}

	candidates := make([]*DataTypeCapability, 0, 4)
	for i := range m.caps {
		if equalFold(string(m.caps[i].Semantic), base) {
			candidates = append(candidates, &m.caps[i])
		}
	}
	if len(candidates) == 0 {
		return SemanticUnknown, nil
	}
	if len(candidates) > 1 {
		candidates = m.filterBySize(candidates, base, length)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsBestMatch != b.IsBestMatch {
			return a.IsBestMatch
		}
		if a.MaxSize != b.MaxSize {
			return a.MaxSize < b.MaxSize
		}
		if a.IsFixedLength != b.IsFixedLength {
			return !a.IsFixedLength
		}
		if a.IsLong != b.IsLong {
			return !a.IsLong
		}
		return false
	})
	return candidates[0].Semantic, candidates[0]
}

// filterBySize keeps candidates able to hold the declared column length.
// Text columns that exceed the dialect's long-text threshold, or whose
// length is unknown or unbounded (zero, or a negative sentinel such as
// SQL Server's -1 for varchar(max)), additionally need a long-text
// capability.
func (m *TypeMapper) filterBySize(candidates []*DataTypeCapability, base string, length int64) []*DataTypeCapability {
	needLong := false
	if equalFold(base, string(SemanticText)) {
		if length <= 0 || length > m.dialect.LongTextThreshold() {
			needLong = true
		}
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c.MaxSize > 0 && length > 0 && c.MaxSize < length {
			continue
		}
		if needLong && !c.IsLong {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// Format produces the canonical type string for a column. When the raw
// type already carries a parenthesized qualifier it is kept verbatim;
// otherwise one is synthesized from the capability parameter template,
// substituting length/size, precision, and scale/bits.
func (m *TypeMapper) Format(rawTypeName string, cap *DataTypeCapability, length, precision, scale int64) string {
	if strings.Contains(rawTypeName, "(") || cap == nil || cap.Params == "" {
		return rawTypeName
	}

	params := strings.Split(cap.Params, ",")
	args := make([]string, 0, len(params))
	for _, p := range params {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case strings.Contains(p, "length"), strings.Contains(p, "size"):
			args = append(args, fmt.Sprintf("%d", length))
		case strings.Contains(p, "precision"):
			args = append(args, fmt.Sprintf("%d", precision))
		case strings.Contains(p, "scale"), strings.Contains(p, "bits"):
			// scale defaults to 0 when the provider did not report one
			args = append(args, fmt.Sprintf("%d", scale))
		}
	}
	if len(args) == 0 {
		return rawTypeName
	}
	return fmt.Sprintf("%s(%s)", rawTypeName, strings.Join(args, ","))
}

// baseTypeName strips any parenthesized qualifier: "varchar(50)" → "varchar".
func baseTypeName(raw string) string {
	if i := strings.Index(raw, "("); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
