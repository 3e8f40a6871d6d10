// Package identity defines the opaque identity value types used by the
// client: account (maid) identities, their signing (anmaid) counterparts,
// and storage-provider (pmid) identities.
package identity
