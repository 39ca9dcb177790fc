// Package capabilities models VOSI capability documents: the XML metadata a
// VO service publishes to describe its interfaces, access URLs, and the
// security methods each interface accepts. The decoded form is what the auth
// layer ingests to decide how to authenticate requests against a service.
package capabilities

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Well-known standardID values for VO service capabilities.
const (
	StandardTAP        = "ivo://ivoa.net/std/TAP"
	StandardSIA        = "ivo://ivoa.net/std/SIA"
	StandardSSA        = "ivo://ivoa.net/std/SSA"
	StandardConeSearch = "ivo://ivoa.net/std/ConeSearch"
	StandardSLAP       = "ivo://ivoa.net/std/SLAP"

	StandardVOSICapabilities = "ivo://ivoa.net/std/VOSI#capabilities"
	StandardVOSIAvailability = "ivo://ivoa.net/std/VOSI#availability"
	StandardVOSITables       = "ivo://ivoa.net/std/VOSI#tables"
)

// Access URL use tags. A "full" URL is matched exactly; "base" and "dir" URLs
// are prefixes under which the service accepts requests.
const (
	UseFull = "full"
	UseBase = "base"
	UseDir  = "dir"
)

// Document is the root of a VOSI capabilities response.
type Document struct {
	XMLName      xml.Name     `xml:"capabilities"`
	Capabilities []Capability `xml:"capability"`
}

// Capability is one service-advertised group of interfaces, identified by the
// IVOA standard it implements.
type Capability struct {
	StandardID string      `xml:"standardID,attr"`
	Interfaces []Interface `xml:"interface"`
}

// Interface is a single endpoint description within a capability.
type Interface struct {
	Type            string           `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
	Role            string           `xml:"role,attr"`
	Version         string           `xml:"version,attr"`
	AccessURLs      []AccessURL      `xml:"accessURL"`
	SecurityMethods []SecurityMethod `xml:"securityMethod"`
}

// AccessURL is an endpoint URL tagged with how it should be matched.
type AccessURL struct {
	Use string `xml:"use,attr"`
	URL string `xml:",chardata"`
}

// SecurityMethod names an authentication mechanism by its SSO standard
// identifier. An empty StandardID means anonymous access.
type SecurityMethod struct {
	StandardID string `xml:"standardID,attr"`
}

// Is reports whether the capability implements the given standard.
func (c Capability) Is(standardID string) bool {
	return c.StandardID == standardID
}

// Parse decodes a VOSI capabilities document.
func Parse(r io.Reader) ([]Capability, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("capabilities: decode: %w", err)
	}
	return doc.Capabilities, nil
}
