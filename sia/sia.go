// Package sia implements Simple Image Access queries: positional searches
// for image datasets, returning records with access URLs and image metadata.
package sia

import (
	"context"
	"fmt"
	"strconv"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
)

// Region intersection modes.
const (
	IntersectCovers   = "COVERS"
	IntersectEnclosed = "ENCLOSED"
	IntersectCenter   = "CENTER"
	IntersectOverlaps = "OVERLAPS"
)

// Special FORMAT values beyond MIME types.
const (
	FormatAll      = "ALL"
	FormatGraphic  = "GRAPHIC"
	FormatMetadata = "METADATA"
)

var validIntersect = map[string]bool{
	IntersectCovers:   true,
	IntersectEnclosed: true,
	IntersectCenter:   true,
	IntersectOverlaps: true,
}

// Service is a Simple Image Access endpoint.
type Service struct {
	dal.BaseService
}

// Option configures a Service.
type Option func(*Service)

// WithSession dispatches the service's queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(s *Service) { s.BaseService = dal.NewBaseService(s.BaseURL(), sess) }
}

// NewService returns a SIA service for the given base URL. Without options
// the service queries anonymously.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{BaseService: dal.NewBaseService(baseURL, nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchParams are the typed SIA query parameters. RA, Dec and Size are in
// decimal degrees. A zero Height means a square region of Size on both axes.
type SearchParams struct {
	RA, Dec   float64
	Size      float64
	Height    float64
	Format    string // MIME type or one of the Format* constants
	Intersect string // one of the Intersect* constants; empty = service default
	Verbosity int    // 1..3; zero omits the parameter
}

// Search issues the query and returns the matching image records.
func (s *Service) Search(ctx context.Context, p SearchParams) (*Results, error) {
	if p.Intersect != "" && !validIntersect[p.Intersect] {
		return nil, fmt.Errorf("sia: invalid INTERSECT value %q", p.Intersect)
	}

	q := dal.NewQuery(s.Session(), "sia", s.BaseURL())
	q.Set("POS", fmt.Sprintf("%s,%s", formatDeg(p.RA), formatDeg(p.Dec)))
	if p.Height > 0 {
		q.Set("SIZE", fmt.Sprintf("%s,%s", formatDeg(p.Size), formatDeg(p.Height)))
	} else {
		q.Set("SIZE", formatDeg(p.Size))
	}
	if p.Format != "" {
		q.Set("FORMAT", p.Format)
	}
	if p.Intersect != "" {
		q.Set("INTERSECT", p.Intersect)
	}
	if p.Verbosity > 0 {
		q.Set("VERB", strconv.Itoa(p.Verbosity))
	}

	res, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &Results{res}, nil
}

func formatDeg(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Results is a SIA result set.
type Results struct {
	*dal.Results
}

// Image returns the i-th image record.
func (r *Results) Image(i int) *ImageRecord {
	return &ImageRecord{r.Record(i)}
}

// ImageRecord is one matched image. The access URL, format, position and
// title accessors come from the embedded DAL record, driven by the VOX UCDs
// SIA services declare.
type ImageRecord struct {
	*dal.Record
}

// Instrument returns the instrument name when the service declares one.
func (rec *ImageRecord) Instrument() string {
	return rec.String("INST_ID")
}
