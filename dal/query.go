package dal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/internal/logctx"
	"github.com/virtualobs/voclient/votable"
)

var votableMediaTypes = []contenttype.MediaType{
	contenttype.NewMediaType("application/x-votable+xml"),
	contenttype.NewMediaType("text/xml"),
	contenttype.NewMediaType("application/xml"),
}

// Query is one parameterized request against a DAL endpoint. Parameters are
// percent-encoded and joined as KEY=value pairs after the base URL's "?".
type Query struct {
	baseURL  string
	protocol string
	params   url.Values
	session  *voclient.Session
}

// NewQuery builds a query against baseURL dispatched through the given
// session. The protocol tag only feeds logging.
func NewQuery(session *voclient.Session, protocol, baseURL string) *Query {
	return &Query{
		baseURL:  baseURL,
		protocol: protocol,
		params:   make(url.Values),
		session:  session,
	}
}

// Set replaces the values of a parameter.
func (q *Query) Set(key, value string) { q.params.Set(key, value) }

// Add appends a value to a parameter.
func (q *Query) Add(key, value string) { q.params.Add(key, value) }

// Get returns the first value set for a parameter.
func (q *Query) Get(key string) string { return q.params.Get(key) }

// URL returns the fully encoded query URL.
func (q *Query) URL() string {
	if len(q.params) == 0 {
		return q.baseURL
	}
	sep := "?"
	if strings.Contains(q.baseURL, "?") {
		sep = "&"
		if strings.HasSuffix(q.baseURL, "?") || strings.HasSuffix(q.baseURL, "&") {
			sep = ""
		}
	}
	return q.baseURL + sep + q.params.Encode()
}

// Execute dispatches the query and parses the VOTable response. A RUNID is
// attached when the caller did not set one, so service-side logs can be
// correlated with this client call. Service-declared query errors are
// returned as *votable.ErrorInfo.
func (q *Query) Execute(ctx context.Context) (*Results, error) {
	if q.params.Get("RUNID") == "" {
		q.params.Set("RUNID", uuid.NewString())
	}
	ctx = logctx.WithQueryData(ctx, &logctx.QueryData{Protocol: q.protocol, BaseURL: q.baseURL})

	resp, err := q.session.Get(ctx, q.baseURL, q.params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ReadResponse(ctx, q.session.Logger(), resp)
}

// ReadResponse validates and parses a protocol response body as a VOTable
// result set. Shared with the TAP job result fetch.
func ReadResponse(ctx context.Context, logger *slog.Logger, resp *http.Response) (*Results, error) {
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dal: service returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if _, _, err := contenttype.GetAcceptableMediaTypeFromHeader(ct, votableMediaTypes); err != nil {
			// Some services mislabel VOTable payloads; log and try anyway.
			logger.WarnContext(ctx, "unexpected response content type", slog.String("content_type", ct))
		}
	}

	doc, err := votable.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	if qe := doc.QueryError(); qe != nil {
		return nil, qe
	}
	if doc.Overflow() {
		logger.WarnContext(ctx, "result set truncated by service")
	}
	return NewResults(doc)
}
