package votable

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Document is the root VOTABLE element.
type Document struct {
	XMLName   xml.Name   `xml:"VOTABLE"`
	Version   string     `xml:"version,attr"`
	Infos     []Info     `xml:"INFO"`
	Resources []Resource `xml:"RESOURCE"`
}

// Resource groups tables and status metadata. DAL responses carry a single
// resource of type "results"; nested resources occur in datalink documents.
type Resource struct {
	ID        string     `xml:"ID,attr"`
	Type      string     `xml:"type,attr"`
	Infos     []Info     `xml:"INFO"`
	Tables    []Table    `xml:"TABLE"`
	Resources []Resource `xml:"RESOURCE"`
}

// Info is a named value element. Services report query status through an
// INFO with name "QUERY_STATUS".
type Info struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

// Table is a decoded TABLE element.
type Table struct {
	Name   string  `xml:"name,attr"`
	Fields []Field `xml:"FIELD"`
	Data   Data    `xml:"DATA"`
}

// Field describes one table column.
type Field struct {
	ID        string `xml:"ID,attr"`
	Name      string `xml:"name,attr"`
	Datatype  string `xml:"datatype,attr"`
	Arraysize string `xml:"arraysize,attr"`
	UCD       string `xml:"ucd,attr"`
	UType     string `xml:"utype,attr"`
	Unit      string `xml:"unit,attr"`
}

// Data holds the row serialization. Only TABLEDATA is decoded.
type Data struct {
	TableData TableData `xml:"TABLEDATA"`
}

// TableData is the XML row serialization.
type TableData struct {
	Rows []Row `xml:"TR"`
}

// Row is one table row of string cells.
type Row struct {
	Cells []string `xml:"TD"`
}

// Query status labels carried in QUERY_STATUS INFO values.
const (
	StatusOK       = "OK"
	StatusError    = "ERROR"
	StatusOverflow = "OVERFLOW"
)

// ErrorInfo is a service-declared query failure: the QUERY_STATUS label plus
// the human-readable reason the service attached to it.
type ErrorInfo struct {
	Label  string
	Reason string
}

func (e *ErrorInfo) Error() string {
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		return fmt.Sprintf("votable: query status %s", e.Label)
	}
	return fmt.Sprintf("votable: query status %s: %s", e.Label, reason)
}

// Parse decodes a VOTable document. Service-declared query errors are not
// treated as parse failures; check QueryError on the returned document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("votable: decode: %w", err)
	}
	return &doc, nil
}

// QueryError returns the service-declared error if any QUERY_STATUS INFO in
// the document carries the ERROR label, otherwise nil. OVERFLOW is a
// truncation marker, not an error.
func (d *Document) QueryError() *ErrorInfo {
	if info := d.statusInfo(); info != nil && info.Value == StatusError {
		return &ErrorInfo{Label: info.Value, Reason: info.Text}
	}
	return nil
}

// Overflow reports whether the service truncated the result set.
func (d *Document) Overflow() bool {
	info := d.statusInfo()
	return info != nil && info.Value == StatusOverflow
}

func (d *Document) statusInfo() *Info {
	for i := range d.Infos {
		if d.Infos[i].Name == "QUERY_STATUS" {
			return &d.Infos[i]
		}
	}
	for ri := range d.Resources {
		res := &d.Resources[ri]
		for i := range res.Infos {
			if res.Infos[i].Name == "QUERY_STATUS" {
				return &res.Infos[i]
			}
		}
	}
	return nil
}

// FirstTable returns the first table in document order, descending into
// nested resources, or nil when the document carries no table.
func (d *Document) FirstTable() *Table {
	for i := range d.Resources {
		if t := firstTable(&d.Resources[i]); t != nil {
			return t
		}
	}
	return nil
}

func firstTable(res *Resource) *Table {
	if len(res.Tables) > 0 {
		return &res.Tables[0]
	}
	for i := range res.Resources {
		if t := firstTable(&res.Resources[i]); t != nil {
			return t
		}
	}
	return nil
}

// FieldIndex returns the column index whose name or ID matches (case
// insensitive), or -1.
func (t *Table) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if strings.EqualFold(f.Name, name) || (f.ID != "" && strings.EqualFold(f.ID, name)) {
			return i
		}
	}
	return -1
}

// FieldIndexByUCD returns the index of the first column whose UCD matches any
// of the given values (case insensitive), or -1. Candidates are tried in
// order so callers can express a preference between legacy and modern UCDs.
func (t *Table) FieldIndexByUCD(ucds ...string) int {
	for _, want := range ucds {
		for i, f := range t.Fields {
			if strings.EqualFold(f.UCD, want) {
				return i
			}
		}
	}
	return -1
}

// FieldIndexByUType returns the index of the first column whose utype matches
// (case insensitive, ignoring any namespace prefix), or -1.
func (t *Table) FieldIndexByUType(utype string) int {
	for i, f := range t.Fields {
		if strings.EqualFold(trimUTypePrefix(f.UType), trimUTypePrefix(utype)) {
			return i
		}
	}
	return -1
}

func trimUTypePrefix(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Data.TableData.Rows) }

// Cell returns the raw string cell at (row, col). Out-of-range coordinates
// yield the empty string, matching a VOTable null.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= t.Len() {
		return ""
	}
	cells := t.Data.TableData.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// Convert interprets a raw cell according to the field's declared datatype.
// Empty cells decode to nil. Character arrays stay strings; numeric scalars
// become int64 or float64, booleans bool.
func (f Field) Convert(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch f.Datatype {
	case "short", "int", "long":
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("votable: field %q: %w", f.Name, err)
		}
		return v, nil
	case "float", "double":
		if strings.EqualFold(s, "nan") {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("votable: field %q: %w", f.Name, err)
		}
		return v, nil
	case "boolean":
		switch strings.ToLower(s) {
		case "t", "true", "1":
			return true, nil
		case "f", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("votable: field %q: bad boolean %q", f.Name, s)
	default:
		// char, unicodeChar, and anything exotic stay textual.
		return raw, nil
	}
}
