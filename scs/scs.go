// Package scs implements Simple Cone Search queries: catalog searches within
// a circular region around a sky position.
package scs

import (
	"context"
	"strconv"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
)

// Service is a Simple Cone Search endpoint.
type Service struct {
	dal.BaseService
}

// Option configures a Service.
type Option func(*Service)

// WithSession dispatches the service's queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(s *Service) { s.BaseService = dal.NewBaseService(s.BaseURL(), sess) }
}

// NewService returns a cone search service for the given base URL.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{BaseService: dal.NewBaseService(baseURL, nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchParams are the typed cone search parameters, all in decimal degrees.
type SearchParams struct {
	RA, Dec   float64
	Radius    float64
	Verbosity int // 1..3; zero omits the parameter
}

// Search issues the query and returns the matching catalog records.
func (s *Service) Search(ctx context.Context, p SearchParams) (*Results, error) {
	q := dal.NewQuery(s.Session(), "scs", s.BaseURL())
	q.Set("RA", formatNum(p.RA))
	q.Set("DEC", formatNum(p.Dec))
	q.Set("SR", formatNum(p.Radius))
	if p.Verbosity > 0 {
		q.Set("VERB", strconv.Itoa(p.Verbosity))
	}

	res, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &Results{res}, nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Results is a cone search result set. Records expose position and
// identifier accessors through the embedded DAL record.
type Results struct {
	*dal.Results
}
