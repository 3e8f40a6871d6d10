// Package keystore persists client keyrings in a local bbolt file so CLI
// sessions can reuse accounts. The correlation core itself keeps no state
// on disk; this store is application-layer convenience only.
package keystore
