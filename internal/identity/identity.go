package identity

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const keySize = 32

// MaidName identifies a client account.
type MaidName string

// AnmaidName identifies the signing counterpart of a maid.
type AnmaidName string

// PmidName identifies a storage provider registered under an account.
type PmidName string

// PublicMaid is the public half of an account identity.
type PublicMaid struct {
	Name MaidName `json:"name"`
	Key  []byte   `json:"key"`
}

// PublicAnmaid is the public half of the identity that signed the maid.
type PublicAnmaid struct {
	Name AnmaidName `json:"name"`
	Key  []byte     `json:"key"`
}

// PublicPmid is the public half of a storage-provider identity.
type PublicPmid struct {
	Name PmidName `json:"name"`
	Key  []byte   `json:"key"`
}

// PmidRegistration binds a storage provider to an account. The signature is
// opaque to this client; peers validate it.
type PmidRegistration struct {
	MaidName  MaidName `json:"maid_name"`
	PmidName  PmidName `json:"pmid_name"`
	Signature []byte   `json:"signature"`
}

// Keyring bundles the identities a single client works with.
type Keyring struct {
	Maid   PublicMaid   `json:"maid"`
	Anmaid PublicAnmaid `json:"anmaid"`
	Pmid   PublicPmid   `json:"pmid"`
}

// NewMaid generates a fresh account identity.
func NewMaid() (PublicMaid, error) {
	key, err := newKey()
	if err != nil {
		return PublicMaid{}, fmt.Errorf("generate maid key: %w", err)
	}
	return PublicMaid{Name: MaidName(uuid.NewString()), Key: key}, nil
}

// NewAnmaid generates a fresh signing identity.
func NewAnmaid() (PublicAnmaid, error) {
	key, err := newKey()
	if err != nil {
		return PublicAnmaid{}, fmt.Errorf("generate anmaid key: %w", err)
	}
	return PublicAnmaid{Name: AnmaidName(uuid.NewString()), Key: key}, nil
}

// NewPmid generates a fresh storage-provider identity.
func NewPmid() (PublicPmid, error) {
	key, err := newKey()
	if err != nil {
		return PublicPmid{}, fmt.Errorf("generate pmid key: %w", err)
	}
	return PublicPmid{Name: PmidName(uuid.NewString()), Key: key}, nil
}

// NewKeyring generates a full identity set for a new client.
func NewKeyring() (Keyring, error) {
	maid, err := NewMaid()
	if err != nil {
		return Keyring{}, err
	}
	anmaid, err := NewAnmaid()
	if err != nil {
		return Keyring{}, err
	}
	pmid, err := NewPmid()
	if err != nil {
		return Keyring{}, err
	}
	return Keyring{Maid: maid, Anmaid: anmaid, Pmid: pmid}, nil
}

// NewRegistration builds a registration of pmid under maid. The signature
// here is a placeholder value; real signing lives in the credential layer.
func NewRegistration(maid MaidName, pmid PmidName) (PmidRegistration, error) {
	sig, err := newKey()
	if err != nil {
		return PmidRegistration{}, fmt.Errorf("generate registration signature: %w", err)
	}
	return PmidRegistration{MaidName: maid, PmidName: pmid, Signature: sig}, nil
}

func newKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
