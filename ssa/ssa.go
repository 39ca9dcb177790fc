// Package ssa implements Simple Spectral Access queries: positional searches
// for spectra, with optional band and time constraints.
package ssa

import (
	"context"
	"fmt"
	"strconv"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
)

// Service is a Simple Spectral Access endpoint.
type Service struct {
	dal.BaseService
}

// Option configures a Service.
type Option func(*Service)

// WithSession dispatches the service's queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(s *Service) { s.BaseService = dal.NewBaseService(s.BaseURL(), sess) }
}

// NewService returns an SSA service for the given base URL.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{BaseService: dal.NewBaseService(baseURL, nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Band is a wavelength interval in meters. Max zero means an open upper
// bound; a Band with both bounds zero is omitted from the query.
type Band struct {
	Min, Max float64
}

func (b Band) encode() string {
	if b.Max > 0 {
		return fmt.Sprintf("%s/%s", formatNum(b.Min), formatNum(b.Max))
	}
	return formatNum(b.Min)
}

// SearchParams are the typed SSA query parameters. RA and Dec are in decimal
// degrees, Diameter is the search diameter in decimal degrees.
type SearchParams struct {
	RA, Dec  float64
	Diameter float64
	Band     Band
	Time     string // ISO 8601 instant or open/closed range "start/stop"
	Format   string
}

// Search issues the query and returns the matching spectrum records.
func (s *Service) Search(ctx context.Context, p SearchParams) (*Results, error) {
	q := dal.NewQuery(s.Session(), "ssa", s.BaseURL())
	q.Set("REQUEST", "queryData")
	q.Set("POS", fmt.Sprintf("%s,%s", formatNum(p.RA), formatNum(p.Dec)))
	if p.Diameter > 0 {
		q.Set("SIZE", formatNum(p.Diameter))
	}
	if p.Band.Min > 0 || p.Band.Max > 0 {
		q.Set("BAND", p.Band.encode())
	}
	if p.Time != "" {
		q.Set("TIME", p.Time)
	}
	if p.Format != "" {
		q.Set("FORMAT", p.Format)
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

// Results is an SSA result set.
type Results struct {
	*dal.Results
}

// Spectrum returns the i-th spectrum record.
func (r *Results) Spectrum(i int) *SpectrumRecord {
	return &SpectrumRecord{r.Record(i)}
}

// SpectrumRecord is one matched spectrum.
type SpectrumRecord struct {
	*dal.Record
}
