// Package auth implements the credential negotiation layer for VO services.
// Services advertise, per interface, which IVOA SSO security methods they
// accept; this package matches an outgoing request URL against the advertised
// URLs, intersects the accepted methods with the credentials the caller
// registered, and yields an Authenticator that attaches the winning
// credential to the request.
//
// The public surface is deliberately small. A URLRegistry is built from VOSI
// capability documents and answers "which methods does this URL accept". A
// CredentialStore holds method-id -> Authenticator bindings and negotiates a
// single method out of a candidate set. Authenticator implementations cover
// the common SSO schemes: cookie, bearer token, HTTP basic, TLS client
// certificate, and the anonymous no-op.
//
// # Negotiation
//
// Negotiate intersects the registered method ids with the candidates. When
// more than one method qualifies, anonymous is dropped: a real credential is
// always preferred over anonymous when both are accepted. An empty
// intersection is a configuration error (ErrNoCommonMethod) — the service
// demands a method the caller holds no credential for.
//
// Selection among several qualifying non-anonymous methods is arbitrary.
// Callers that need determinism should register at most one non-anonymous
// credential.
//
// # Failure semantics
//
// URL lookup never fails: a URL with no registered methods degrades to
// anonymous access. Negotiation and authenticator lookup fail loudly, since
// both indicate misconfiguration rather than a service condition.
package auth
