package auth

import (
	"reflect"
	"testing"

	"github.com/virtualobs/voclient/capabilities"
)

func capWith(use, url string, methods ...string) capabilities.Capability {
	iface := capabilities.Interface{
		AccessURLs: []capabilities.AccessURL{{Use: use, URL: url}},
	}
	for _, m := range methods {
		iface.SecurityMethods = append(iface.SecurityMethods, capabilities.SecurityMethod{StandardID: m})
	}
	return capabilities.Capability{Interfaces: []capabilities.Interface{iface}}
}

func TestMethodsForUnknownURL(t *testing.T) {
	r := NewURLRegistry()

	got := r.MethodsFor("https://example.org/anything")
	want := []string{MethodAnonymous}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MethodsFor() = %v, want %v", got, want)
	}
}

func TestFullURLExactMatch(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{capWith("full", "https://example.org/tap/sync", MethodCookie)})

	got := r.MethodsFor("https://example.org/tap/sync")
	if !reflect.DeepEqual(got, []string{MethodCookie}) {
		t.Fatalf("MethodsFor(exact) = %v", got)
	}

	// A sub-path of a full URL is not a match.
	got = r.MethodsFor("https://example.org/tap/sync/extra")
	if !reflect.DeepEqual(got, []string{MethodAnonymous}) {
		t.Fatalf("MethodsFor(sub-path of full) = %v, want anonymous", got)
	}
}

func TestBasePrefixMatch(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{capWith("base", "https://example.org/tap", MethodCookie)})

	got := r.MethodsFor("https://example.org/tap/async/123/phase")
	if !reflect.DeepEqual(got, []string{MethodCookie}) {
		t.Fatalf("MethodsFor(sub-path of base) = %v", got)
	}
}

func TestLongestPrefixWins(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{
		capWith("base", "/a", MethodBasicAA),
		capWith("base", "/a/b", MethodCookie),
	})

	got := r.MethodsFor("/a/b/c")
	if !reflect.DeepEqual(got, []string{MethodCookie}) {
		t.Fatalf("MethodsFor(/a/b/c) = %v, want the /a/b methods", got)
	}
	got = r.MethodsFor("/a/x")
	if !reflect.DeepEqual(got, []string{MethodBasicAA}) {
		t.Fatalf("MethodsFor(/a/x) = %v, want the /a methods", got)
	}
}

func TestEqualLengthPrefixTieBreaksLexicographically(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{
		capWith("base", "/svc", MethodToken),
		capWith("base", "/svd", MethodCookie),
	})

	// Two distinct equal-length strings can never both be prefixes of one
	// URL, so the tie-break cannot alter a lookup; it guarantees a
	// deterministic scan order, observable through BaseURLs.
	got := r.BaseURLs()
	want := []string{"/svc", "/svd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BaseURLs() = %v, want %v", got, want)
	}

	// The equal-length sibling must not bleed into lookups either way.
	if got := r.MethodsFor("/svc/q"); !reflect.DeepEqual(got, []string{MethodToken}) {
		t.Fatalf("MethodsFor(/svc/q) = %v, want the /svc methods", got)
	}
	if got := r.MethodsFor("/svd/q"); !reflect.DeepEqual(got, []string{MethodCookie}) {
		t.Fatalf("MethodsFor(/svd/q) = %v, want the /svd methods", got)
	}
}

func TestIngestUnionsMethodSets(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{capWith("base", "/tap", MethodCookie)})
	r.Ingest([]capabilities.Capability{capWith("base", "/tap", MethodToken)})

	got := r.MethodsFor("/tap/sync")
	want := []string{MethodCookie, MethodToken}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MethodsFor() after two ingests = %v, want union %v", got, want)
	}
}

func TestIngestEmptySecurityMethodMeansAnonymous(t *testing.T) {
	r := NewURLRegistry()

	// No securityMethod elements at all.
	r.Ingest([]capabilities.Capability{capWith("base", "/open")})
	// A securityMethod without a standardID.
	r.Ingest([]capabilities.Capability{capWith("full", "/blank", "")})

	if got := r.MethodsFor("/open/query"); !reflect.DeepEqual(got, []string{MethodAnonymous}) {
		t.Fatalf("MethodsFor(/open/query) = %v", got)
	}
	if got := r.MethodsFor("/blank"); !reflect.DeepEqual(got, []string{MethodAnonymous}) {
		t.Fatalf("MethodsFor(/blank) = %v", got)
	}
}

func TestDirUseGoesToPrefixTable(t *testing.T) {
	r := NewURLRegistry()
	r.Ingest([]capabilities.Capability{capWith("dir", "/data/", MethodCookie)})

	if got := r.MethodsFor("/data/file.fits"); !reflect.DeepEqual(got, []string{MethodCookie}) {
		t.Fatalf("MethodsFor(under dir) = %v", got)
	}
}
