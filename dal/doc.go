// Package dal carries the query machinery shared by the protocol packages:
// building a percent-encoded query URL from typed parameters, dispatching it
// through an authenticated session, validating the response media type, and
// exposing the parsed VOTable as records with astronomy-aware accessors
// (position, access URL, format, title).
//
// Protocol packages (sia, ssa, scs, slap, tap) construct a Query, populate
// their parameters, and wrap the returned Results in protocol-specific record
// types. Service-reported failures inside an otherwise successful HTTP
// response (QUERY_STATUS ERROR) surface as *votable.ErrorInfo errors.
package dal
