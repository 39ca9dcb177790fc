package tap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
)

// Service is a TAP endpoint. The base URL is the service root; the protocol
// endpoints (/sync, /async) hang off it.
type Service struct {
	dal.BaseService
	lang   string
	maxrec int
}

// Option configures a Service.
type Option func(*Service)

// WithSession dispatches the service's queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(s *Service) { s.BaseService = dal.NewBaseService(s.BaseURL(), sess) }
}

// WithLanguage sets the query language. Default ADQL.
func WithLanguage(lang string) Option {
	return func(s *Service) { s.lang = lang }
}

// WithMaxRec caps how many rows the service may return per query.
func WithMaxRec(n int) Option {
	return func(s *Service) { s.maxrec = n }
}

// NewService returns a TAP service for the given base URL.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{
		BaseService: dal.NewBaseService(baseURL, nil),
		lang:        "ADQL",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) queryForm(query string) url.Values {
	form := url.Values{}
	form.Set("REQUEST", "doQuery")
	form.Set("LANG", s.lang)
	form.Set("QUERY", query)
	form.Set("RUNID", uuid.NewString())
	if s.maxrec > 0 {
		form.Set("MAXREC", strconv.Itoa(s.maxrec))
	}
	return form
}

// RunSync executes a query against the synchronous endpoint and parses the
// response in place.
func (s *Service) RunSync(ctx context.Context, query string) (*dal.Results, error) {
	resp, err := s.Session().PostForm(ctx, s.BaseURL()+"/sync", s.queryForm(query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return dal.ReadResponse(ctx, s.Session().Logger(), resp)
}

// SubmitJob creates an asynchronous job for the query. The job starts in the
// PENDING phase; call Run to start it.
func (s *Service) SubmitJob(ctx context.Context, query string) (*Job, error) {
	resp, err := s.Session().PostForm(ctx, s.BaseURL()+"/async", s.queryForm(query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("tap: job creation returned %s", resp.Status)
	}

	// The service answers job creation with a 303 to the job resource; the
	// HTTP client has already followed it, so the final request URL is the
	// job URL and the body is the job document.
	doc, err := parseJobDocument(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Job{
		url:     resp.Request.URL.String(),
		id:      doc.JobID,
		phase:   Phase(doc.Phase),
		session: s.Session(),
	}, nil
}

// Job returns a handle to an existing job resource, refreshing its state
// from the service. Lets a client reconnect to a job created earlier.
func (s *Service) Job(ctx context.Context, jobURL string) (*Job, error) {
	j := &Job{url: jobURL, session: s.Session()}
	if err := j.refresh(ctx); err != nil {
		return nil, err
	}
	return j, nil
}
