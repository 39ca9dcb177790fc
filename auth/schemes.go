package auth

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieAuth attaches a fixed set of cookies to every request. This is the
// ivo://ivoa.net/sso#cookie scheme: the caller obtains session cookies out of
// band (typically from a login endpoint) and registers them here.
type CookieAuth struct {
	cookies []*http.Cookie
}

// NewCookieAuth returns a cookie authenticator for the given cookies.
func NewCookieAuth(cookies ...*http.Cookie) *CookieAuth {
	return &CookieAuth{cookies: append([]*http.Cookie(nil), cookies...)}
}

func (c *CookieAuth) Name() string { return "cookie" }

func (c *CookieAuth) Apply(req *http.Request) error {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	return nil
}

// BasicAuth implements the ivo://ivoa.net/sso#BasicAA scheme.
type BasicAuth struct {
	Username string
	Password string
}

func (b *BasicAuth) Name() string { return "basic" }

func (b *BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// LogValue redacts the password when the credential is logged.
func (b *BasicAuth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", b.Username),
		slog.String("password", "********"),
	)
}

// BearerAuth attaches an Authorization: Bearer header. When the token is a
// JWT its expiry is inspected (without signature verification) so a stale
// token can be reported before the service rejects it.
type BearerAuth struct {
	token  string
	exp    time.Time
	logger *slog.Logger
}

// BearerOption configures a BearerAuth.
type BearerOption func(*BearerAuth)

// WithBearerLogger sets the logger used to warn about expired tokens.
func WithBearerLogger(l *slog.Logger) BearerOption {
	return func(b *BearerAuth) { b.logger = l }
}

// NewBearerAuth returns a bearer-token authenticator.
func NewBearerAuth(token string, opts ...BearerOption) *BearerAuth {
	b := &BearerAuth{token: token, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	// Opportunistic expiry extraction; non-JWT tokens are fine.
	parser := jwt.NewParser()
	if tok, _, err := parser.ParseUnverified(token, jwt.MapClaims{}); err == nil {
		if exp, err := tok.Claims.GetExpirationTime(); err == nil && exp != nil {
			b.exp = exp.Time
		}
	}
	return b
}

func (b *BearerAuth) Name() string { return "bearer" }

// ExpiresAt returns the token expiry and whether one is known.
func (b *BearerAuth) ExpiresAt() (time.Time, bool) {
	return b.exp, !b.exp.IsZero()
}

func (b *BearerAuth) Apply(req *http.Request) error {
	if exp, ok := b.ExpiresAt(); ok && time.Now().After(exp) {
		b.logger.Warn("bearer token is expired", slog.Time("expired_at", exp))
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	return nil
}

// CertAuth implements ivo://ivoa.net/sso#tls-with-certificate. The credential
// lives in the TLS handshake rather than the request, so Apply is a no-op and
// the session instead wraps its transport via WrapTransport.
type CertAuth struct {
	cert tls.Certificate
}

// NewCertAuth loads a client certificate and key pair from PEM files.
func NewCertAuth(certFile, keyFile string) (*CertAuth, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("auth: load client certificate: %w", err)
	}
	return &CertAuth{cert: cert}, nil
}

func (c *CertAuth) Name() string { return "tls-client-cert" }

func (c *CertAuth) Apply(req *http.Request) error { return nil }

// WrapTransport returns a transport presenting the client certificate. When
// base is an *http.Transport it is cloned with the certificate added;
// otherwise a fresh transport is built.
func (c *CertAuth) WrapTransport(base http.RoundTripper) http.RoundTripper {
	var tr *http.Transport
	if t, ok := base.(*http.Transport); ok {
		tr = t.Clone()
	} else {
		tr = http.DefaultTransport.(*http.Transport).Clone()
	}
	if tr.TLSClientConfig == nil {
		tr.TLSClientConfig = &tls.Config{}
	}
	tr.TLSClientConfig.Certificates = append(tr.TLSClientConfig.Certificates, c.cert)
	return tr
}
