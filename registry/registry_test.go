package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/virtualobs/voclient/sia"
	"github.com/virtualobs/voclient/tap"
)

func TestBuildQuery(t *testing.T) {
	query, err := buildQuery([]Constraint{
		Keywords("quasar"),
		ServiceType(TypeSIA),
		Waveband("Optical"),
	})
	if err != nil {
		t.Fatalf("buildQuery() failed: %v", err)
	}

	for _, want := range []string{
		"FROM rr.resource NATURAL JOIN rr.capability NATURAL JOIN rr.interface",
		"intf_role = 'std'",
		"ivo_hasword(res_description, 'quasar')",
		"ivo_hasword(res_title, 'quasar')",
		"standard_id LIKE 'ivo://ivoa.net/std/sia%'",
		"ivo_hashlist_has(waveband, 'optical')",
	} {
		if !strings.Contains(query, want) {
			t.Fatalf("query missing %q:\n%s", want, query)
		}
	}
}

func TestConstraintEscaping(t *testing.T) {
	query, err := buildQuery([]Constraint{Author("O'Neil")})
	if err != nil {
		t.Fatalf("buildQuery() failed: %v", err)
	}
	if !strings.Contains(query, "'%O''Neil%'") {
		t.Fatalf("single quote not doubled:\n%s", query)
	}
}

func TestServiceTypeRejectsUnknownLabel(t *testing.T) {
	if _, err := buildQuery([]Constraint{ServiceType("interferometer")}); err == nil {
		t.Fatal("buildQuery() accepted an unknown service type")
	}
}

func TestKeywordsRequiresWords(t *testing.T) {
	if _, err := buildQuery([]Constraint{Keywords()}); err == nil {
		t.Fatal("buildQuery() accepted empty Keywords()")
	}
}

const regtapDoc = `<?xml version="1.0"?>
<VOTABLE version="1.3"><RESOURCE type="results">
<INFO name="QUERY_STATUS" value="OK"/>
<TABLE>
  <FIELD name="ivoid" datatype="char" arraysize="*"/>
  <FIELD name="res_type" datatype="char" arraysize="*"/>
  <FIELD name="short_name" datatype="char" arraysize="*"/>
  <FIELD name="res_title" datatype="char" arraysize="*"/>
  <FIELD name="res_description" datatype="char" arraysize="*"/>
  <FIELD name="access_url" datatype="char" arraysize="*"/>
  <FIELD name="standard_id" datatype="char" arraysize="*"/>
  <DATA><TABLEDATA>
    <TR>
      <TD>ivo://example/deepsurvey</TD>
      <TD>vs:catalogservice</TD>
      <TD>DEEP</TD>
      <TD>Deep Survey Images</TD>
      <TD>A deep optical survey.</TD>
      <TD>https://example.org/sia?</TD>
      <TD>ivo://ivoa.net/std/SIA</TD>
    </TR>
  </TABLEDATA></DATA>
</TABLE>
</RESOURCE></VOTABLE>`

func TestSearchAndResourceBridging(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tap/sync" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		gotQuery.Store(r.PostForm.Get("QUERY"))
		w.Header().Set("Content-Type", "application/x-votable+xml")
		fmt.Fprint(w, regtapDoc)
	}))
	defer srv.Close()

	reg := New(WithEndpoint(srv.URL + "/tap"))
	res, err := reg.Search(context.Background(), Keywords("deep"), ServiceType(TypeSIA))
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if res.Len() != 1 {
		t.Fatalf("Len() = %d", res.Len())
	}

	if q, _ := gotQuery.Load().(string); !strings.Contains(q, "ivo_hasword") {
		t.Fatalf("dispatched query = %q", q)
	}

	r := res.Resource(0)
	if r.IVOID() != "ivo://example/deepsurvey" {
		t.Fatalf("IVOID() = %q", r.IVOID())
	}
	if r.ShortName() != "DEEP" {
		t.Fatalf("ShortName() = %q", r.ShortName())
	}
	if r.Title() != "Deep Survey Images" {
		t.Fatalf("Title() = %q", r.Title())
	}

	svc, err := r.Service()
	if err != nil {
		t.Fatalf("Service() failed: %v", err)
	}
	siaSvc, ok := svc.(*sia.Service)
	if !ok {
		t.Fatalf("Service() = %T, want *sia.Service", svc)
	}
	if siaSvc.BaseURL() != "https://example.org/sia" {
		t.Fatalf("BaseURL() = %q", siaSvc.BaseURL())
	}
}

func TestResourceServiceUnknownStandard(t *testing.T) {
	// A registry row whose standard has no protocol client.
	doc := strings.Replace(regtapDoc, "ivo://ivoa.net/std/SIA", "ivo://ivoa.net/std/VOSpace", 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	res, err := New(WithEndpoint(srv.URL)).Search(context.Background())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if _, err := res.Resource(0).Service(); err == nil {
		t.Fatal("Service() built a client for an unsupported standard")
	}
}

func TestResourceServiceTAP(t *testing.T) {
	doc := strings.NewReplacer(
		"ivo://ivoa.net/std/SIA", "ivo://ivoa.net/std/TAP",
		"https://example.org/sia?", "https://example.org/tap",
	).Replace(regtapDoc)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	res, err := New(WithEndpoint(srv.URL)).Search(context.Background())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	svc, err := res.Resource(0).Service()
	if err != nil {
		t.Fatalf("Service() failed: %v", err)
	}
	if _, ok := svc.(*tap.Service); !ok {
		t.Fatalf("Service() = %T, want *tap.Service", svc)
	}
}
