package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketSession = []byte("session")

const (
	keyClientID = "client_id"
	keyAccount  = "account"
)

// SessionStore persists the client identity and account name between
// runs. With an empty path it runs memory-only (no persistence), which
// the tests rely on.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex

	// In-memory mirror; always authoritative once loaded
	mem map[string][]byte
}

// NewSessionStore opens (or creates) the store at dir. An empty dir
// selects memory-only mode.
func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		return &SessionStore{mem: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "reeldeck.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, mem: make(map[string][]byte)}, nil
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SessionStore) get(key string, dest interface{}) bool {
	s.mu.RLock()
	if data, ok := s.mem[key]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.mem[key] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mem[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		return b.Put([]byte(key), data)
	})
}

// === Identity ===

// EnsureClientID returns the stored client identity, minting and
// persisting a new one on first run.
func (s *SessionStore) EnsureClientID() (string, error) {
	var id string
	if s.get(keyClientID, &id) && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.set(keyClientID, id); err != nil {
		return "", fmt.Errorf("failed to persist client id: %w", err)
	}
	return id, nil
}

// Account returns the stored account name, if any.
func (s *SessionStore) Account() (string, bool) {
	var name string
	ok := s.get(keyAccount, &name)
	return name, ok && name != ""
}

// SaveAccount stores the account name.
func (s *SessionStore) SaveAccount(name string) error {
	return s.set(keyAccount, name)
}

// === Reset ===

// Reset wipes all stored state. Used by sign-out; the next run mints a
// fresh client identity.
func (s *SessionStore) Reset() error {
	s.mu.Lock()
	s.mem = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
