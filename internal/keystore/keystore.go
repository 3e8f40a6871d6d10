package keystore

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"maidclient/internal/identity"
)

var bucketKeyrings = []byte("keyrings")

// ErrNotFound means no keyring is stored under the requested name.
var ErrNotFound = errors.New("keyring not found")

// Store is a bbolt-backed keyring store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKeyrings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init keystore %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a keyring under name, overwriting any previous one.
func (s *Store) Put(name string, kr identity.Keyring) error {
	data, err := json.Marshal(kr)
	if err != nil {
		return fmt.Errorf("marshal keyring %s: %w", name, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKeyrings).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("store keyring %s: %w", name, err)
	}
	return nil
}

// Get loads the keyring stored under name.
func (s *Store) Get(name string) (identity.Keyring, error) {
	var kr identity.Keyring
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketKeyrings).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("keyring %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &kr)
	})
	if err != nil {
		return identity.Keyring{}, err
	}
	return kr, nil
}

// Names lists the stored keyring names.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKeyrings).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list keyrings: %w", err)
	}
	return names, nil
}
