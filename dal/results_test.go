package dal

import (
	"errors"
	"strings"
	"testing"

	"github.com/virtualobs/voclient/votable"
)

func parseResults(t *testing.T, doc string) *Results {
	t.Helper()
	parsed, err := votable.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	res, err := NewResults(parsed)
	if err != nil {
		t.Fatalf("NewResults() failed: %v", err)
	}
	return res
}

func TestRecordAccessors(t *testing.T) {
	res := parseResults(t, resultDoc)
	rec := res.Record(0)

	ra, dec, err := rec.Position()
	if err != nil {
		t.Fatalf("Position() failed: %v", err)
	}
	if ra != 12.5 || dec != -30.25 {
		t.Fatalf("Position() = %v, %v", ra, dec)
	}

	acref, err := rec.AccessURL()
	if err != nil {
		t.Fatalf("AccessURL() failed: %v", err)
	}
	if acref != "https://example.org/img/1.fits" {
		t.Fatalf("AccessURL() = %q", acref)
	}

	if got := rec.Format(); got != "image/fits" {
		t.Fatalf("Format() = %q", got)
	}
	if got := rec.Title(); got != "Deep field" {
		t.Fatalf("Title() = %q", got)
	}
}

func TestRecordGetAndFloat(t *testing.T) {
	res := parseResults(t, resultDoc)
	rec := res.Record(0)

	v, err := rec.Get("ra")
	if err != nil {
		t.Fatalf("Get(ra) failed: %v", err)
	}
	if v.(float64) != 12.5 {
		t.Fatalf("Get(ra) = %v", v)
	}

	f, err := rec.Float("dec")
	if err != nil {
		t.Fatalf("Float(dec) failed: %v", err)
	}
	if f != -30.25 {
		t.Fatalf("Float(dec) = %v", f)
	}

	if _, err := rec.Get("absent"); !errors.Is(err, ErrNoSuchColumn) {
		t.Fatalf("Get(absent) error = %v, want ErrNoSuchColumn", err)
	}
}

func TestAccessURLFallsBackToUType(t *testing.T) {
	const ssaDoc = `<?xml version="1.0"?>
<VOTABLE version="1.3"><RESOURCE type="results">
<TABLE>
  <FIELD name="url" datatype="char" arraysize="*" utype="ssa:Access.Reference"/>
  <DATA><TABLEDATA><TR><TD>https://example.org/spec/1</TD></TR></TABLEDATA></DATA>
</TABLE>
</RESOURCE></VOTABLE>`

	res := parseResults(t, ssaDoc)
	acref, err := res.Record(0).AccessURL()
	if err != nil {
		t.Fatalf("AccessURL() failed: %v", err)
	}
	if acref != "https://example.org/spec/1" {
		t.Fatalf("AccessURL() = %q", acref)
	}
}

func TestNewResultsWithoutTable(t *testing.T) {
	parsed, err := votable.Parse(strings.NewReader(
		`<?xml version="1.0"?><VOTABLE version="1.3"><RESOURCE type="results"/></VOTABLE>`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := NewResults(parsed); !errors.Is(err, ErrNoTable) {
		t.Fatalf("NewResults() error = %v, want ErrNoTable", err)
	}
}

func TestFieldNames(t *testing.T) {
	res := parseResults(t, resultDoc)
	names := res.FieldNames()
	want := []string{"ra", "dec", "acref", "mime", "title"}
	if len(names) != len(want) {
		t.Fatalf("FieldNames() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("FieldNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
