// Package voclient is a client library for the Virtual Observatory family of
// data-access protocols. The protocol packages (sia, ssa, scs, slap, tap,
// registry) build typed queries against a service base URL; this root package
// provides the authenticated session those queries dispatch through.
//
// A Session wraps an *http.Client. Before each request it resolves which
// security methods the target URL accepts (from the capability metadata
// ingested at attach time), negotiates one against the registered
// credentials, and attaches that credential to the request. With no
// credentials registered every request goes out anonymous, so unauthenticated
// use needs no setup at all:
//
//	svc := sia.NewService("https://example.org/sia")
//	results, err := svc.Search(ctx, sia.SearchParams{RA: 52.1, Dec: -27.8, Size: 0.1})
//
// Authenticated use registers credentials and attaches the session to the
// service, which fetches and ingests the service's VOSI capabilities:
//
//	sess := voclient.NewSession()
//	sess.Credentials().Add(auth.MethodCookie, auth.NewCookieAuth(loginCookie))
//	if err := sess.Attach(ctx, svc); err != nil { ... }
package voclient

import (
	"context"
)

// Service is the contract a protocol service implements so a Session can be
// attached to it. Attach fetches the service's capability document, ingests
// its access URLs and security methods, and points the service at the
// session for subsequent queries.
type Service interface {
	// BaseURL returns the service's query endpoint.
	BaseURL() string

	// CapabilitiesURL returns the VOSI capabilities endpoint.
	CapabilitiesURL() string

	// SetSession rebinds the service to dispatch through the given session.
	SetSession(s *Session)
}

// Attach binds the session to a service: the service's advertised
// capabilities are ingested into the session's URL registry and the service
// is mutated to dispatch through this session.
func (s *Session) Attach(ctx context.Context, svc Service) error {
	caps, err := s.fetchCapabilities(ctx, svc.CapabilitiesURL())
	if err != nil {
		return err
	}
	s.urls.Ingest(caps)
	svc.SetSession(s)
	return nil
}
