// Package registry searches the VO registry through its RegTAP relational
// interface. Searches are expressed as composable constraints rendered into
// an ADQL query against the rr schema and issued through a TAP service; the
// matching resources can be turned directly into protocol service clients.
//
//	res, err := registry.Search(ctx, registry.Keywords("quasar"), registry.ServiceType(registry.TypeSIA))
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/capabilities"
	"github.com/virtualobs/voclient/dal"
	"github.com/virtualobs/voclient/scs"
	"github.com/virtualobs/voclient/sia"
	"github.com/virtualobs/voclient/slap"
	"github.com/virtualobs/voclient/ssa"
	"github.com/virtualobs/voclient/tap"
)

// DefaultEndpoint is the RegTAP service queried when none is configured.
const DefaultEndpoint = "http://reg.g-vo.org/tap"

// Service type labels accepted by ServiceType.
const (
	TypeSIA        = "sia"
	TypeSSA        = "ssa"
	TypeSLAP       = "slap"
	TypeConeSearch = "conesearch"
	TypeTAP        = "tap"
)

var typeStandards = map[string]string{
	TypeSIA:        "ivo://ivoa.net/std/sia",
	TypeSSA:        "ivo://ivoa.net/std/ssa",
	TypeSLAP:       "ivo://ivoa.net/std/slap",
	TypeConeSearch: "ivo://ivoa.net/std/conesearch",
	TypeTAP:        "ivo://ivoa.net/std/tap",
}

// Constraint narrows a registry search. Implementations render one ADQL
// condition; conditions are AND-joined.
type Constraint interface {
	where() (string, error)
}

type whereFunc func() (string, error)

func (f whereFunc) where() (string, error) { return f() }

// quote escapes a value for inclusion in an ADQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Keywords matches resources whose title or description contains every given
// word.
func Keywords(words ...string) Constraint {
	return whereFunc(func() (string, error) {
		if len(words) == 0 {
			return "", fmt.Errorf("registry: Keywords needs at least one word")
		}
		terms := make([]string, len(words))
		for i, w := range words {
			q := quote(strings.ToLower(w))
			terms[i] = fmt.Sprintf("(1 = ivo_hasword(res_description, %s) OR 1 = ivo_hasword(res_title, %s))", q, q)
		}
		return strings.Join(terms, " AND "), nil
	})
}

// ServiceType restricts matches to resources exposing the given protocol,
// one of the Type* labels or a full standard id.
func ServiceType(t string) Constraint {
	return whereFunc(func() (string, error) {
		std, ok := typeStandards[strings.ToLower(t)]
		if !ok {
			if !strings.HasPrefix(t, "ivo://") {
				return "", fmt.Errorf("registry: unknown service type %q", t)
			}
			std = strings.ToLower(t)
		}
		return fmt.Sprintf("standard_id LIKE %s", quote(std+"%")), nil
	})
}

// Waveband restricts matches to resources covering the given waveband
// (radio, infrared, optical, uv, euv, x-ray, gamma-ray).
func Waveband(band string) Constraint {
	return whereFunc(func() (string, error) {
		return fmt.Sprintf("1 = ivo_hashlist_has(waveband, %s)", quote(strings.ToLower(band))), nil
	})
}

// Author matches resources with a creator whose name contains the given
// fragment.
func Author(name string) Constraint {
	return whereFunc(func() (string, error) {
		return fmt.Sprintf(
			"ivoid IN (SELECT ivoid FROM rr.res_role WHERE base_role = 'creator' AND role_name LIKE %s)",
			quote("%"+name+"%")), nil
	})
}

// Ivoid matches the single resource with the given identifier.
func Ivoid(id string) Constraint {
	return whereFunc(func() (string, error) {
		return fmt.Sprintf("ivoid = %s", quote(strings.ToLower(id))), nil
	})
}

// Registry is a handle on one RegTAP service.
type Registry struct {
	tap *tap.Service
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	endpoint string
	sess     *voclient.Session
}

// WithEndpoint queries a different RegTAP service.
func WithEndpoint(url string) Option {
	return func(c *config) { c.endpoint = url }
}

// WithSession dispatches registry queries through an existing session.
func WithSession(sess *voclient.Session) Option {
	return func(c *config) { c.sess = sess }
}

// New returns a registry client.
func New(opts ...Option) *Registry {
	cfg := config{endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(&cfg)
	}
	tapOpts := []tap.Option{}
	if cfg.sess != nil {
		tapOpts = append(tapOpts, tap.WithSession(cfg.sess))
	}
	return &Registry{tap: tap.NewService(cfg.endpoint, tapOpts...)}
}

// Search runs the constraints against the default registry endpoint.
func Search(ctx context.Context, constraints ...Constraint) (*Results, error) {
	return New().Search(ctx, constraints...)
}

// Search runs the constraints and returns the matching resources.
func (r *Registry) Search(ctx context.Context, constraints ...Constraint) (*Results, error) {
	query, err := buildQuery(constraints)
	if err != nil {
		return nil, err
	}
	res, err := r.tap.RunSync(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Results{res}, nil
}

func buildQuery(constraints []Constraint) (string, error) {
	conds := []string{"intf_role = 'std'"}
	for _, c := range constraints {
		cond, err := c.where()
		if err != nil {
			return "", err
		}
		conds = append(conds, "("+cond+")")
	}
	return "SELECT DISTINCT ivoid, res_type, short_name, res_title, res_description, access_url, standard_id" +
		" FROM rr.resource NATURAL JOIN rr.capability NATURAL JOIN rr.interface" +
		" WHERE " + strings.Join(conds, " AND "), nil
}

// Results is a registry search result set.
type Results struct {
	*dal.Results
}

// Resource returns the i-th matched resource.
func (r *Results) Resource(i int) *Resource {
	return &Resource{r.Record(i)}
}

// Resource is one registry record.
type Resource struct {
	rec *dal.Record
}

// IVOID returns the resource identifier.
func (res *Resource) IVOID() string { return res.rec.String("ivoid") }

// ShortName returns the resource short name.
func (res *Resource) ShortName() string { return res.rec.String("short_name") }

// Title returns the resource title.
func (res *Resource) Title() string { return res.rec.String("res_title") }

// Description returns the resource description.
func (res *Resource) Description() string { return res.rec.String("res_description") }

// AccessURL returns the interface access URL.
func (res *Resource) AccessURL() string { return res.rec.String("access_url") }

// StandardID returns the protocol standard the interface implements.
func (res *Resource) StandardID() string { return res.rec.String("standard_id") }

// Service builds a protocol client for the resource's access URL, selected
// by its standard id. All protocol services implement voclient.Service, so
// the result can be attached to a session directly; assert the concrete type
// to search.
func (res *Resource) Service() (voclient.Service, error) {
	base := strings.TrimRight(res.AccessURL(), "?&")
	std := strings.ToLower(res.StandardID())
	switch {
	case strings.HasPrefix(std, strings.ToLower(capabilities.StandardSIA)):
		return sia.NewService(base), nil
	case strings.HasPrefix(std, strings.ToLower(capabilities.StandardSSA)):
		return ssa.NewService(base), nil
	case strings.HasPrefix(std, strings.ToLower(capabilities.StandardConeSearch)):
		return scs.NewService(base), nil
	case strings.HasPrefix(std, strings.ToLower(capabilities.StandardSLAP)):
		return slap.NewService(base), nil
	case strings.HasPrefix(std, strings.ToLower(capabilities.StandardTAP)):
		return tap.NewService(base), nil
	}
	return nil, fmt.Errorf("registry: no client for standard %q", res.StandardID())
}
