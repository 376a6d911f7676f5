package tasks

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const tasksBucket = "tasks"

var (
	ErrTaskExists   = errors.New("task already exists")
	ErrTaskNotFound = errors.New("task not found")
)

// Task is a single to-do item.
type Task struct {
	Title  string `json:"title"`
	IsDone bool   `json:"isDone"`
}

// Store persists tasks in bbolt, keyed by insertion sequence. Titles are
// unique; completion flips the stored entry in place.
type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("task store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure task store dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// List returns all tasks in insertion order.
func (s *Store) List() ([]Task, error) {
	out := []Task{}
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, value []byte) error {
			var task Task
			if err := json.Unmarshal(value, &task); err != nil {
				return fmt.Errorf("decode task: %w", err)
			}
			out = append(out, task)
			return nil
		})
	})
	return out, err
}

// Add appends a new open task. Adding a title that already exists
// returns ErrTaskExists.
func (s *Store) Add(title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(tasksBucket))
		if err != nil {
			return err
		}
		if key, _ := findTask(bucket, title); key != nil {
			return ErrTaskExists
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		value, err := json.Marshal(Task{Title: title})
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// Complete marks the task with the given title as done. An unknown
// title returns ErrTaskNotFound.
func (s *Store) Complete(title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return ErrTaskNotFound
		}
		key, task := findTask(bucket, title)
		if key == nil {
			return ErrTaskNotFound
		}
		task.IsDone = true
		value, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

func findTask(bucket *bolt.Bucket, title string) ([]byte, Task) {
	var foundKey []byte
	var found Task
	_ = bucket.ForEach(func(key, value []byte) error {
		if foundKey != nil {
			return nil
		}
		var task Task
		if err := json.Unmarshal(value, &task); err != nil {
			return nil
		}
		if task.Title == title {
			foundKey = append([]byte(nil), key...)
			found = task
		}
		return nil
	})
	return foundKey, found
}
