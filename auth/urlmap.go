package auth

import (
	"sort"
	"strings"
	"sync"

	"github.com/virtualobs/voclient/capabilities"
)

type methodSet map[string]struct{}

func (m methodSet) union(other methodSet) {
	for id := range other {
		m[id] = struct{}{}
	}
}

func (m methodSet) slice() []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// URLRegistry maps request URLs to the security methods a service accepts
// for them. Exact-match URLs (use="full") and prefix URLs (use="base" or
// "dir") live in separate tables; method sets accumulate across ingestions
// and entries are never removed. Safe for concurrent use.
type URLRegistry struct {
	mu   sync.RWMutex
	full map[string]methodSet
	base map[string]methodSet

	// prefixes caches base table keys ordered longest first, equal lengths
	// lexicographic, rebuilt on ingest.
	prefixes []string
}

// NewURLRegistry returns an empty registry. Lookups against an empty
// registry yield anonymous.
func NewURLRegistry() *URLRegistry {
	return &URLRegistry{
		full: make(map[string]methodSet),
		base: make(map[string]methodSet),
	}
}

// Ingest records the access URLs and security methods advertised by the
// given capabilities. An interface without security methods, or a method
// without a standard identifier, contributes the anonymous method.
func (r *URLRegistry) Ingest(caps []capabilities.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range caps {
		for _, iface := range c.Interfaces {
			methods := make(methodSet, len(iface.SecurityMethods))
			for _, sm := range iface.SecurityMethods {
				id := strings.TrimSpace(sm.StandardID)
				if id == "" {
					id = MethodAnonymous
				}
				methods[id] = struct{}{}
			}
			if len(methods) == 0 {
				methods[MethodAnonymous] = struct{}{}
			}
			for _, access := range iface.AccessURLs {
				u := strings.TrimSpace(access.URL)
				if u == "" {
					continue
				}
				switch access.Use {
				case capabilities.UseFull:
					r.add(r.full, u, methods)
				case capabilities.UseBase, capabilities.UseDir:
					r.add(r.base, u, methods)
				default:
					// Unknown use tags are treated as exact URLs.
					r.add(r.full, u, methods)
				}
			}
		}
	}
	r.rebuildPrefixes()
}

func (r *URLRegistry) add(table map[string]methodSet, url string, methods methodSet) {
	set, ok := table[url]
	if !ok {
		set = make(methodSet, len(methods))
		table[url] = set
	}
	set.union(methods)
}

func (r *URLRegistry) rebuildPrefixes() {
	r.prefixes = r.prefixes[:0]
	for p := range r.base {
		r.prefixes = append(r.prefixes, p)
	}
	sort.Slice(r.prefixes, func(i, j int) bool {
		a, b := r.prefixes[i], r.prefixes[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// MethodsFor returns the security methods accepted for a request URL: the
// exact full-table entry when present, otherwise the entry for the longest
// registered prefix of the URL (equal-length ties resolved lexicographically),
// otherwise anonymous. Never fails.
func (r *URLRegistry) MethodsFor(url string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if set, ok := r.full[url]; ok {
		return set.slice()
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(url, prefix) {
			return r.base[prefix].slice()
		}
	}
	return []string{MethodAnonymous}
}

// BaseURLs returns the registered prefix URLs, longest first. Exposed for
// diagnostics.
func (r *URLRegistry) BaseURLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.prefixes...)
}
