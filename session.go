package voclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virtualobs/voclient/auth"
	"github.com/virtualobs/voclient/cache"
	"github.com/virtualobs/voclient/capabilities"
	"github.com/virtualobs/voclient/internal/logctx"
)

// Session is an authenticating HTTP session. Every request verb resolves the
// security methods the target URL accepts, negotiates one against the
// registered credentials, and attaches the winning authenticator before
// dispatch. Transport-level failures propagate unchanged; there is no retry
// logic at this layer.
type Session struct {
	hc       *http.Client
	creds    *auth.CredentialStore
	urls     *auth.URLRegistry
	logger   *slog.Logger
	ua       string
	capCache cache.Store
	capTTL   time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) { s.hc = hc }
}

// WithLogger sets the session logger. Records are enriched with per-request
// attributes via logctx.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) { s.ua = ua }
}

// WithCredentialStore shares a credential store across sessions.
func WithCredentialStore(cs *auth.CredentialStore) Option {
	return func(s *Session) { s.creds = cs }
}

// WithCapabilityCache caches fetched capability documents in the given store
// for the given TTL. A zero ttl caches without expiration.
func WithCapabilityCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Session) {
		s.capCache = store
		s.capTTL = ttl
	}
}

// NewSession returns a session with the given options applied over the
// environment configuration. With no registered credentials every request is
// dispatched anonymously.
func NewSession(opts ...Option) *Session {
	cfg, err := ConfigFromEnv()
	if err != nil {
		// Malformed environment falls back to compiled defaults.
		cfg = Config{Timeout: 30 * time.Second, UserAgent: "voclient/1", CapabilityTTL: 6 * time.Hour}
	}
	s := &Session{
		hc:     &http.Client{Timeout: cfg.Timeout},
		creds:  auth.NewCredentialStore(),
		urls:   auth.NewURLRegistry(),
		logger: slog.Default(),
		ua:     cfg.UserAgent,
		capTTL: cfg.CapabilityTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = slog.New(logctx.Handler{Handler: s.logger.Handler()})
	return s
}

// Credentials returns the session's credential store.
func (s *Session) Credentials() *auth.CredentialStore { return s.creds }

// Registry returns the session's URL-to-methods registry.
func (s *Session) Registry() *auth.URLRegistry { return s.urls }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	auth    auth.Authenticator
	headers http.Header
}

// WithAuth attaches the given authenticator instead of negotiating one. Used
// when the caller already knows how a URL must be authenticated.
func WithAuth(a auth.Authenticator) RequestOption {
	return func(rc *requestConfig) { rc.auth = a }
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		if rc.headers == nil {
			rc.headers = make(http.Header)
		}
		rc.headers.Add(key, value)
	}
}

// Get issues a GET. The query values, when non-nil, are percent-encoded and
// appended to the URL.
func (s *Session) Get(ctx context.Context, rawurl string, query url.Values, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodGet, rawurl, query, "", nil, opts)
}

// Head issues a HEAD request.
func (s *Session) Head(ctx context.Context, rawurl string, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodHead, rawurl, nil, "", nil, opts)
}

// Options issues an OPTIONS request.
func (s *Session) Options(ctx context.Context, rawurl string, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodOptions, rawurl, nil, "", nil, opts)
}

// Post issues a POST with the given body and content type.
func (s *Session) Post(ctx context.Context, rawurl, contentType string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodPost, rawurl, nil, contentType, body, opts)
}

// PostForm issues a POST with form-encoded values.
func (s *Session) PostForm(ctx context.Context, rawurl string, form url.Values, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodPost, rawurl, nil, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), opts)
}

// Put issues a PUT with the given body and content type.
func (s *Session) Put(ctx context.Context, rawurl, contentType string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodPut, rawurl, nil, contentType, body, opts)
}

// Patch issues a PATCH with the given body and content type.
func (s *Session) Patch(ctx context.Context, rawurl, contentType string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodPatch, rawurl, nil, contentType, body, opts)
}

// Delete issues a DELETE request.
func (s *Session) Delete(ctx context.Context, rawurl string, opts ...RequestOption) (*http.Response, error) {
	return s.do(ctx, http.MethodDelete, rawurl, nil, "", nil, opts)
}

// do negotiates credentials against the endpoint URL alone; query values are
// appended only when building the request, so a URL registered for exact
// matching still resolves once parameters are attached.
func (s *Session) do(ctx context.Context, method, rawurl string, query url.Values, contentType string, body io.Reader, opts []RequestOption) (*http.Response, error) {
	rc := requestConfig{}
	for _, opt := range opts {
		opt(&rc)
	}

	a := rc.auth
	methodName := "explicit"
	if a == nil {
		allowed := s.urls.MethodsFor(rawurl)
		methodID, err := s.creds.Negotiate(allowed)
		if err != nil {
			return nil, fmt.Errorf("voclient: %s %s: %w", method, rawurl, err)
		}
		a, err = s.creds.AuthenticatorFor(methodID)
		if err != nil {
			return nil, fmt.Errorf("voclient: %s %s: %w", method, rawurl, err)
		}
		methodName = methodID
	}

	fullURL := joinQuery(rawurl, query)
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("voclient: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", s.ua)
	for key, values := range rc.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if err := a.Apply(req); err != nil {
		return nil, fmt.Errorf("voclient: apply %s credential: %w", a.Name(), err)
	}

	client := s.hc
	if tw, ok := a.(auth.TransportWrapper); ok {
		dup := *s.hc
		dup.Transport = tw.WrapTransport(s.hc.Transport)
		client = &dup
	}

	ctx = logctx.WithRequestData(ctx, &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     method,
		URL:        fullURL,
		AuthMethod: methodName,
	})
	s.logger.DebugContext(ctx, "dispatching request", slog.String("scheme", a.Name()))

	return client.Do(req)
}

func (s *Session) fetchCapabilities(ctx context.Context, capURL string) ([]capabilities.Capability, error) {
	if s.capCache != nil {
		item, err := s.capCache.Get(ctx, capURL)
		if err != nil {
			s.logger.WarnContext(ctx, "capability cache get failed", slog.String("err", err.Error()))
		} else if item != nil {
			return capabilities.Parse(bytes.NewReader(item.Data))
		}
	}

	resp, err := s.Get(ctx, capURL, nil)
	if err != nil {
		return nil, fmt.Errorf("voclient: fetch capabilities: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voclient: fetch capabilities: %s returned %s", capURL, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voclient: fetch capabilities: %w", err)
	}

	caps, err := capabilities.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if s.capCache != nil {
		if err := s.capCache.Set(ctx, capURL, raw, s.capTTL); err != nil {
			s.logger.WarnContext(ctx, "capability cache set failed", slog.String("err", err.Error()))
		}
	}
	return caps, nil
}

// joinQuery appends encoded query values to a URL that may already carry a
// query string.
func joinQuery(rawurl string, query url.Values) string {
	if len(query) == 0 {
		return rawurl
	}
	sep := "?"
	if strings.Contains(rawurl, "?") {
		sep = "&"
		if strings.HasSuffix(rawurl, "?") || strings.HasSuffix(rawurl, "&") {
			sep = ""
		}
	}
	return rawurl + sep + query.Encode()
}
