package dal

import (
	"errors"
	"fmt"

	"github.com/virtualobs/voclient/votable"
)

// ErrNoTable indicates a response VOTable that carries no result table.
var ErrNoTable = errors.New("dal: response carries no table")

// ErrNoSuchColumn indicates a record accessor for a column the table does not
// declare, by name or by UCD.
var ErrNoSuchColumn = errors.New("dal: no such column")

// Results is a parsed result set: the response document plus its first
// (and in DAL responses, only) table.
type Results struct {
	doc   *votable.Document
	table *votable.Table
}

// NewResults wraps a parsed VOTable document as a result set.
func NewResults(doc *votable.Document) (*Results, error) {
	table := doc.FirstTable()
	if table == nil {
		return nil, ErrNoTable
	}
	return &Results{doc: doc, table: table}, nil
}

// Len returns the number of records.
func (r *Results) Len() int { return r.table.Len() }

// Table exposes the underlying VOTable table.
func (r *Results) Table() *votable.Table { return r.table }

// FieldNames returns the declared column names in table order.
func (r *Results) FieldNames() []string {
	out := make([]string, len(r.table.Fields))
	for i, f := range r.table.Fields {
		out[i] = f.Name
	}
	return out
}

// Record returns the i-th record. Panics when i is out of range, matching
// slice semantics.
func (r *Results) Record(i int) *Record {
	if i < 0 || i >= r.Len() {
		panic(fmt.Sprintf("dal: record index %d out of range [0,%d)", i, r.Len()))
	}
	return &Record{results: r, row: i}
}

// Record is one row of a result set with typed and astronomy-aware
// accessors.
type Record struct {
	results *Results
	row     int
}

// Get returns the cell for the named column, converted per its declared
// datatype. Empty cells yield nil.
func (rec *Record) Get(name string) (any, error) {
	idx := rec.results.table.FieldIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchColumn, name)
	}
	return rec.results.table.Fields[idx].Convert(rec.results.table.Cell(rec.row, idx))
}

// String returns the raw cell text for the named column, empty when the
// column is absent.
func (rec *Record) String(name string) string {
	idx := rec.results.table.FieldIndex(name)
	if idx < 0 {
		return ""
	}
	return rec.results.table.Cell(rec.row, idx)
}

// Float returns the named column as float64.
func (rec *Record) Float(name string) (float64, error) {
	v, err := rec.Get(name)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case nil:
		return 0, fmt.Errorf("dal: column %q is null", name)
	default:
		return 0, fmt.Errorf("dal: column %q is not numeric", name)
	}
}

// UCD candidate lists for the astronomy accessors. Legacy (VO 1.0) UCDs come
// first since the simple protocols predate the modern vocabulary.
var (
	raUCDs        = []string{"POS_EQ_RA_MAIN", "pos.eq.ra;meta.main", "pos.eq.ra"}
	decUCDs       = []string{"POS_EQ_DEC_MAIN", "pos.eq.dec;meta.main", "pos.eq.dec"}
	accessURLUCDs = []string{"VOX:Image_AccessReference", "DATA_LINK", "meta.ref.url"}
	formatUCDs    = []string{"VOX:Image_Format", "meta.code.mime"}
	titleUCDs     = []string{"VOX:Image_Title", "meta.title", "ID_MAIN", "meta.id;meta.main"}
)

// Position returns the record's ICRS position in decimal degrees, located by
// UCD.
func (rec *Record) Position() (ra, dec float64, err error) {
	t := rec.results.table
	raIdx := t.FieldIndexByUCD(raUCDs...)
	decIdx := t.FieldIndexByUCD(decUCDs...)
	if raIdx < 0 || decIdx < 0 {
		return 0, 0, fmt.Errorf("%w: position (by UCD)", ErrNoSuchColumn)
	}
	ra, err = rec.floatAt(raIdx)
	if err != nil {
		return 0, 0, err
	}
	dec, err = rec.floatAt(decIdx)
	if err != nil {
		return 0, 0, err
	}
	return ra, dec, nil
}

// AccessURL returns the dataset access URL, located by UCD then by the SSA
// Access.Reference utype.
func (rec *Record) AccessURL() (string, error) {
	t := rec.results.table
	idx := t.FieldIndexByUCD(accessURLUCDs...)
	if idx < 0 {
		idx = t.FieldIndexByUType("Access.Reference")
	}
	if idx < 0 {
		return "", fmt.Errorf("%w: access URL (by UCD/utype)", ErrNoSuchColumn)
	}
	return t.Cell(rec.row, idx), nil
}

// Format returns the dataset MIME type or format label, empty when the table
// does not declare one.
func (rec *Record) Format() string {
	t := rec.results.table
	idx := t.FieldIndexByUCD(formatUCDs...)
	if idx < 0 {
		idx = t.FieldIndexByUType("Access.Format")
	}
	if idx < 0 {
		return ""
	}
	return t.Cell(rec.row, idx)
}

// Title returns the dataset title or main identifier, empty when absent.
func (rec *Record) Title() string {
	t := rec.results.table
	idx := t.FieldIndexByUCD(titleUCDs...)
	if idx < 0 {
		return ""
	}
	return t.Cell(rec.row, idx)
}

func (rec *Record) floatAt(idx int) (float64, error) {
	t := rec.results.table
	v, err := t.Fields[idx].Convert(t.Cell(rec.row, idx))
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("dal: column %q is not numeric", t.Fields[idx].Name)
	}
}
