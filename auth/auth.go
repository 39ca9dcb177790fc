package auth

import (
	"errors"
	"net/http"
)

// IVOA SSO standard identifiers for security methods, plus the anonymous
// pseudo-method used when a service advertises no method at all.
const (
	MethodAnonymous     = "anonymous"
	MethodCookie        = "ivo://ivoa.net/sso#cookie"
	MethodBasicAA       = "ivo://ivoa.net/sso#BasicAA"
	MethodTLSClientCert = "ivo://ivoa.net/sso#tls-with-certificate"
	MethodOAuth         = "ivo://ivoa.net/sso#OAuth"
	MethodToken         = "ivo://ivoa.net/sso#token"
)

// ErrNoCommonMethod indicates the service accepts no method the caller holds
// a credential for.
var ErrNoCommonMethod = errors.New("auth: no common authentication method")

// ErrUnknownMethod indicates a lookup for a method id that was never
// registered.
var ErrUnknownMethod = errors.New("auth: method not registered")

// Authenticator attaches one credential scheme to an outgoing request.
// Implementations must be safe for concurrent use.
type Authenticator interface {
	// Name returns the scheme name for logging.
	Name() string

	// Apply mutates the request to carry the credential.
	Apply(req *http.Request) error
}

// TransportWrapper is optionally implemented by authenticators whose
// credential lives below the request layer (TLS client certificates). The
// session consults it to wrap the HTTP transport for the request.
type TransportWrapper interface {
	WrapTransport(base http.RoundTripper) http.RoundTripper
}

// Anonymous is the no-credential authenticator. Apply is a no-op.
type Anonymous struct{}

func (Anonymous) Name() string                  { return "anonymous" }
func (Anonymous) Apply(req *http.Request) error { return nil }
