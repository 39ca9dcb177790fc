package votable

import (
	"errors"
	"strings"
	"testing"
)

const sampleVOTable = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.3" xmlns="http://www.ivoa.net/xml/VOTable/v1.3">
  <RESOURCE type="results">
    <INFO name="QUERY_STATUS" value="OK"/>
    <TABLE name="results">
      <FIELD ID="ra" name="RA" datatype="double" ucd="pos.eq.ra;meta.main" unit="deg"/>
      <FIELD ID="dec" name="Dec" datatype="double" ucd="pos.eq.dec;meta.main" unit="deg"/>
      <FIELD name="title" datatype="char" arraysize="*" ucd="meta.title"/>
      <FIELD name="nobs" datatype="int"/>
      <FIELD name="flag" datatype="boolean"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>52.25</TD><TD>-27.75</TD><TD>First field</TD><TD>12</TD><TD>T</TD></TR>
          <TR><TD>180.0</TD><TD>0.5</TD><TD>Second field</TD><TD></TD><TD>F</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if doc.Version != "1.3" {
		t.Fatalf("version = %q", doc.Version)
	}
	if doc.QueryError() != nil {
		t.Fatalf("unexpected query error: %v", doc.QueryError())
	}

	table := doc.FirstTable()
	if table == nil {
		t.Fatal("FirstTable() returned nil")
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if len(table.Fields) != 5 {
		t.Fatalf("fields = %d, want 5", len(table.Fields))
	}
}

func TestFieldLookup(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	table := doc.FirstTable()

	if idx := table.FieldIndex("ra"); idx != 0 {
		t.Fatalf("FieldIndex(ra) = %d (ID match expected)", idx)
	}
	if idx := table.FieldIndex("TITLE"); idx != 2 {
		t.Fatalf("FieldIndex(TITLE) = %d (case-insensitive name match expected)", idx)
	}
	if idx := table.FieldIndex("absent"); idx != -1 {
		t.Fatalf("FieldIndex(absent) = %d, want -1", idx)
	}
	if idx := table.FieldIndexByUCD("POS_EQ_DEC_MAIN", "pos.eq.dec;meta.main"); idx != 1 {
		t.Fatalf("FieldIndexByUCD(dec) = %d", idx)
	}
}

func TestConvert(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	table := doc.FirstTable()

	v, err := table.Fields[0].Convert(table.Cell(0, 0))
	if err != nil {
		t.Fatalf("Convert(double) failed: %v", err)
	}
	if v.(float64) != 52.25 {
		t.Fatalf("Convert(double) = %v", v)
	}

	v, err = table.Fields[3].Convert(table.Cell(0, 3))
	if err != nil {
		t.Fatalf("Convert(int) failed: %v", err)
	}
	if v.(int64) != 12 {
		t.Fatalf("Convert(int) = %v", v)
	}

	// Empty cell is a null.
	v, err = table.Fields[3].Convert(table.Cell(1, 3))
	if err != nil {
		t.Fatalf("Convert(null) failed: %v", err)
	}
	if v != nil {
		t.Fatalf("Convert(null) = %v, want nil", v)
	}

	v, err = table.Fields[4].Convert(table.Cell(0, 4))
	if err != nil {
		t.Fatalf("Convert(boolean) failed: %v", err)
	}
	if v.(bool) != true {
		t.Fatalf("Convert(boolean) = %v", v)
	}
}

func TestQueryError(t *testing.T) {
	const errDoc = `<?xml version="1.0"?>
<VOTABLE version="1.3">
  <RESOURCE type="results">
    <INFO name="QUERY_STATUS" value="ERROR">malformed position parameter</INFO>
  </RESOURCE>
</VOTABLE>`

	doc, err := Parse(strings.NewReader(errDoc))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	qe := doc.QueryError()
	if qe == nil {
		t.Fatal("QueryError() = nil")
	}
	if qe.Label != StatusError {
		t.Fatalf("label = %q", qe.Label)
	}
	if !strings.Contains(qe.Reason, "malformed position") {
		t.Fatalf("reason = %q", qe.Reason)
	}

	var target *ErrorInfo
	if !errors.As(error(qe), &target) {
		t.Fatal("ErrorInfo does not unwrap as itself")
	}
}

func TestOverflow(t *testing.T) {
	const overflowDoc = `<?xml version="1.0"?>
<VOTABLE version="1.3">
  <RESOURCE type="results">
    <INFO name="QUERY_STATUS" value="OVERFLOW"/>
    <TABLE><DATA><TABLEDATA/></DATA></TABLE>
  </RESOURCE>
</VOTABLE>`

	doc, err := Parse(strings.NewReader(overflowDoc))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if !doc.Overflow() {
		t.Fatal("Overflow() = false")
	}
	if doc.QueryError() != nil {
		t.Fatal("overflow reported as an error")
	}
}

func TestFirstTableDescendsNestedResources(t *testing.T) {
	const nested = `<?xml version="1.0"?>
<VOTABLE version="1.3">
  <RESOURCE type="meta">
    <RESOURCE type="results">
      <TABLE name="inner"><DATA><TABLEDATA/></DATA></TABLE>
    </RESOURCE>
  </RESOURCE>
</VOTABLE>`

	doc, err := Parse(strings.NewReader(nested))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	table := doc.FirstTable()
	if table == nil || table.Name != "inner" {
		t.Fatalf("FirstTable() = %+v", table)
	}
}
