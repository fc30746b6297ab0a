package schema

import (
	"encoding/xml"
	"fmt"
	"io"
)

// The export format: a `Tables` root with one `Table` element per table,
// all table and column attributes carried as XML attributes, and nested
// `Column`/`Index` elements. Export followed by Import reproduces an
// equivalent table set field for field.

type xmlTables struct {
	XMLName xml.Name   `xml:"Tables"`
	Tables  []xmlTable `xml:"Table"`
}

type xmlTable struct {
	Name        string      `xml:"name,attr"`
	ID          int         `xml:"id,attr"`
	Description string      `xml:"description,attr,omitempty"`
	Owner       string      `xml:"owner,attr,omitempty"`
	IsView      bool        `xml:"view,attr"`
	Dialect     string      `xml:"dialect,attr"`
	Columns     []xmlColumn `xml:"Column"`
	Indexes     []xmlIndex  `xml:"Index"`
}

type xmlColumn struct {
	ID          int    `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	SafeName    string `xml:"safeName,attr,omitempty"`
	Semantic    string `xml:"semantic,attr,omitempty"`
	RawType     string `xml:"rawType,attr,omitempty"`
	Formatted   string `xml:"formatted,attr,omitempty"`
	IsIdentity  bool   `xml:"identity,attr"`
	IsPrimary   bool   `xml:"primaryKey,attr"`
	IsNullable  bool   `xml:"nullable,attr"`
	IsUnicode   bool   `xml:"unicode,attr"`
	Length      int64  `xml:"length,attr"`
	ByteLength  int64  `xml:"byteLength,attr"`
	Precision   int64  `xml:"precision,attr"`
	Scale       int64  `xml:"scale,attr"`
	Default     string `xml:"default,attr,omitempty"`
	Description string `xml:"description,attr,omitempty"`
}

type xmlIndex struct {
	Name     string           `xml:"name,attr"`
	IsUnique bool             `xml:"unique,attr"`
	Columns  []xmlIndexColumn `xml:"IndexColumn"`
}

type xmlIndexColumn struct {
	Name string `xml:"name,attr"`
}

// ExportXML writes the table set snapshot to w.
func ExportXML(w io.Writer, tables []*Table) error {
	doc := xmlTables{Tables: make([]xmlTable, 0, len(tables))}
	for _, t := range tables {
		xt := xmlTable{
			Name:        t.Name,
			ID:          t.ID,
			Description: t.Description,
			Owner:       t.Owner,
			IsView:      t.IsView,
			Dialect:     t.Dialect,
		}
		for _, c := range t.Columns {
			xt.Columns = append(xt.Columns, xmlColumn{
				ID:          c.ID,
				Name:        c.Name,
				SafeName:    c.SafeName,
				Semantic:    string(c.Semantic),
				RawType:     c.RawType,
				Formatted:   c.Formatted,
				IsIdentity:  c.IsIdentity,
				IsPrimary:   c.IsPrimary,
				IsNullable:  c.IsNullable,
				IsUnicode:   c.IsUnicode,
				Length:      c.Length,
				ByteLength:  c.ByteLength,
				Precision:   c.Precision,
				Scale:       c.Scale,
				Default:     c.Default,
				Description: c.Description,
			})
		}
		for _, idx := range t.Indexes {
			xi := xmlIndex{Name: idx.Name, IsUnique: idx.IsUnique}
			for _, col := range idx.Columns {
				xi.Columns = append(xi.Columns, xmlIndexColumn{Name: col})
			}
			xt.Indexes = append(xt.Indexes, xi)
		}
		doc.Tables = append(doc.Tables, xt)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode table set: %w", err)
	}
	return enc.Close()
}

// ImportXML reads a table set previously written by ExportXML, restoring
// column back-references. Relationship links are inference results, not
// schema attributes, and are re-derived by the caller when needed.
func ImportXML(r io.Reader) ([]*Table, error) {
	var doc xmlTables
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode table set: %w", err)
	}

	tables := make([]*Table, 0, len(doc.Tables))
	for _, xt := range doc.Tables {
		t := &Table{
			Name:        xt.Name,
			ID:          xt.ID,
			Description: xt.Description,
			Owner:       xt.Owner,
			IsView:      xt.IsView,
			Dialect:     xt.Dialect,
		}
		for _, xc := range xt.Columns {
			t.Columns = append(t.Columns, &Column{
				ID:          xc.ID,
				Name:        xc.Name,
				SafeName:    xc.SafeName,
				Semantic:    Semantic(xc.Semantic),
				RawType:     xc.RawType,
				Formatted:   xc.Formatted,
				IsIdentity:  xc.IsIdentity,
				IsPrimary:   xc.IsPrimary,
				IsNullable:  xc.IsNullable,
				IsUnicode:   xc.IsUnicode,
				Length:      xc.Length,
				ByteLength:  xc.ByteLength,
				Precision:   xc.Precision,
				Scale:       xc.Scale,
				Default:     xc.Default,
				Description: xc.Description,
				Table:       t,
			})
		}
		for _, xi := range xt.Indexes {
			idx := &Index{Name: xi.Name, IsUnique: xi.IsUnique}
			for _, xic := range xi.Columns {
				idx.Columns = append(idx.Columns, xic.Name)
			}
			t.Indexes = append(t.Indexes, idx)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
