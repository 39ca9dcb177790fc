// Package votable decodes VOTable documents, the tabular XML interchange
// format used by Virtual Observatory services. It exposes the parsed table
// structure (resources, fields, rows), typed cell conversion driven by the
// declared FIELD datatype, and detection of service-reported query errors
// carried in QUERY_STATUS INFO elements.
//
// Only the TABLEDATA serialization is supported. BINARY, BINARY2 and FITS
// streams are out of scope; services are queried with parameters that select
// the XML serialization.
package votable
