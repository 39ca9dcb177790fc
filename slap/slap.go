// Package slap implements Simple Line Access queries: searches for spectral
// line transitions within a wavelength interval.
package slap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
)

// Service is a Simple Line Access endpoint.
type Service struct {
	dal.BaseService
}

// Option configures a Service.
type Option func(*Service)

// WithSession dispatches the service's queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(s *Service) { s.BaseService = dal.NewBaseService(s.BaseURL(), sess) }
}

// NewService returns a SLAP service for the given base URL.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{BaseService: dal.NewBaseService(baseURL, nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the spectral lines whose wavelength (in meters, vacuum)
// falls within [min, max]. A zero max leaves the interval open above.
func (s *Service) Search(ctx context.Context, min, max float64) (*Results, error) {
	q := dal.NewQuery(s.Session(), "slap", s.BaseURL())
	q.Set("REQUEST", "queryData")
	if max > 0 {
		q.Set("WAVELENGTH", fmt.Sprintf("%s/%s", formatNum(min), formatNum(max)))
	} else {
		q.Set("WAVELENGTH", formatNum(min))
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

// Results is a SLAP result set.
type Results struct {
	*dal.Results
}
