package schema

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// FixRelationships infers foreign-key-like links across the table set from
// naming conventions. For every ordered pair of distinct tables (A, B),
// a column of A matching a convention derived from B's name and B's single
// primary-key column gets a non-owning link to B.
//
// This is a heuristic, not a constraint: missed relationships are
// acceptable and false positives are a known limitation. Foreign-key
// catalogs are deliberately not consulted, even when the engine exposes
// one, to keep behavior identical across providers that expose none.
// A future capability hook may ingest real FK metadata.
func FixRelationships(tables []*Table) {
	for _, a := range tables {
		for _, b := range tables {
			if a == b {
				continue
			}
			linkPair(a, b)
		}
	}
}

func linkPair(a, b *Table) {
	pks := b.PrimaryKeys()
	if len(pks) != 1 {
		return
	}
	pk := pks[0]

	for _, candidate := range conventionNames(trimOwner(b.Name), pk.Name) {
		for _, col := range a.Columns {
			if col.IsPrimary || col.Ref != nil {
				continue
			}
			if equalFold(col.Name, candidate) {
				col.Ref = b
			}
		}
	}
}

// conventionNames lists the column names that would conventionally point
// at a table's primary key: the PK name joined onto the table name (both
// plain and underscore-separated), the same for the table's singular
// form, and the PK name alone when it already carries more than a bare
// "id".
func conventionNames(tableName, pkName string) []string {
	names := []string{tableName + pkName, tableName + "_" + pkName}

	if singular := inflection.Singular(tableName); !equalFold(singular, tableName) {
		names = append(names, singular+pkName, singular+"_"+pkName)
	}
	if !equalFold(pkName, "id") {
		names = append(names, pkName)
	}
	return names
}

// trimOwner strips a leading "owner." qualifier from a table name before
// convention matching.
func trimOwner(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
