package dal

import (
	"strings"

	"github.com/virtualobs/voclient"
)

// BaseService carries the state every protocol service shares: the query
// endpoint and the session requests dispatch through. Protocol packages
// embed it and add their typed search operations.
type BaseService struct {
	baseURL string
	sess    *voclient.Session
}

// NewBaseService wires a service to a session. A nil session gets a fresh
// anonymous one, so unauthenticated services need no setup.
func NewBaseService(baseURL string, sess *voclient.Session) BaseService {
	if sess == nil {
		sess = voclient.NewSession()
	}
	return BaseService{baseURL: baseURL, sess: sess}
}

// BaseURL returns the service's query endpoint.
func (s *BaseService) BaseURL() string { return s.baseURL }

// CapabilitiesURL returns the sibling VOSI capabilities endpoint.
func (s *BaseService) CapabilitiesURL() string {
	return strings.TrimRight(s.baseURL, "?&") + "/capabilities"
}

// SetSession rebinds the service to dispatch through the given session.
// Called by Session.Attach.
func (s *BaseService) SetSession(sess *voclient.Session) { s.sess = sess }

// Session returns the session the service dispatches through.
func (s *BaseService) Session() *voclient.Session { return s.sess }
