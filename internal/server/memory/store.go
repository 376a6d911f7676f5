package memory

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// demoUser scopes all entries; a production system would derive the
// scope from the authenticated session.
const demoUser = "user"

// Store persists memory entries in bbolt, one bucket per user scope,
// keyed by insertion sequence.
type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("memory store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure memory store dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends one memory entry.
func (s *Store) Save(content string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(demoUser))
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, []byte(content))
	})
}

// Search returns entries containing query, case-insensitively, in
// insertion order.
func (s *Store) Search(query string) ([]string, error) {
	needle := strings.ToLower(query)
	return s.collect(func(content string) bool {
		return strings.Contains(strings.ToLower(content), needle)
	})
}

// All returns every entry in insertion order.
func (s *Store) All() ([]string, error) {
	return s.collect(func(string) bool { return true })
}

func (s *Store) collect(match func(string) bool) ([]string, error) {
	out := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(demoUser))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, value []byte) error {
			content := string(value)
			if match(content) {
				out = append(out, content)
			}
			return nil
		})
	})
	return out, err
}
