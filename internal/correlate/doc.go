// Package correlate allocates the identifiers that tie an outgoing request
// to the responses it later receives.
package correlate
