// Package store keeps a history of verification runs in a bbolt file.
//
// Each model gets its own bucket. Runs are JSON values keyed by the
// bucket's big-endian sequence number, so a cursor walks them in the
// order they were recorded.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var ErrInvalidRun = errors.New("run needs a model and a check name")

// Run is one recorded verdict. Batch groups the runs recorded by one
// invocation of the checker.
type Run struct {
	Batch      string    `json:"batch,omitempty"`
	Model      string    `json:"model"`
	Check      string    `json:"check"`
	Formula    string    `json:"formula"`
	Holds      bool      `json:"holds"`
	Satisfying []int     `json:"satisfying"`
	At         time.Time `json:"at"`
}

type Store struct {
	db *bolt.DB
}

// Open creates or opens the history file at path. It fails after a
// second if another process holds the file.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends r to its model's history. A zero At is set to now.
func (s *Store) Record(r Run) error {
	if r.Model == "" || r.Check == "" {
		return ErrInvalidRun
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(r.Model))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		js, err := json.Marshal(&r)
		if err != nil {
			return err
		}
		return b.Put(key(seq), js)
	})
}

// Runs returns a model's history, oldest first. An unknown model has
// no runs.
func (s *Store) Runs(model string) ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(model))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			runs = append(runs, r)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read runs of %s: %w", model, err)
	}
	return runs, nil
}

// Latest returns the most recent run of one check.
func (s *Store) Latest(model, check string) (Run, bool, error) {
	var (
		found Run
		ok    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(model))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if r.Check == check {
				found, ok = r, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, false, fmt.Errorf("read latest %s/%s: %w", model, check, err)
	}
	return found, ok, nil
}

// Models lists the models with recorded runs, in byte order.
func (s *Store) Models() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

func key(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
