// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package replay

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const checkpointKeyPrefix = "replay:checkpoint:"

// ErrCheckpointStoreClosed is returned after Close.
var ErrCheckpointStoreClosed = errors.New("checkpoint store closed")

// Checkpoint records replay progress for one source file.
type Checkpoint struct {
	Source    string    `json:"source"`
	Line      int64     `json:"line"`
	Timestamp int64     `json:"timestamp"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointStore persists checkpoints.
type CheckpointStore interface {
	Load(source string) (Checkpoint, bool, error)
	Save(cp Checkpoint) error
	Delete(source string) error
}

// BadgerCheckpointStore keeps checkpoints in BadgerDB.
type BadgerCheckpointStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenCheckpointStore opens (or creates) a checkpoint store at path. An
// in-memory store ignores path and is used in tests.
func OpenCheckpointStore(path string, inMemory bool) (*BadgerCheckpointStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return &BadgerCheckpointStore{db: db}, nil
}

func checkpointKey(source string) []byte {
	return []byte(checkpointKeyPrefix + source)
}

// Load returns the checkpoint for source. ok is false when none exists.
func (s *BadgerCheckpointStore) Load(source string) (cp Checkpoint, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return cp, false, ErrCheckpointStoreClosed
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(checkpointKey(source))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cp)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, true, nil
}

// Save writes cp, replacing any previous checkpoint for the same source.
func (s *BadgerCheckpointStore) Save(cp Checkpoint) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrCheckpointStoreClosed
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(checkpointKey(cp.Source), data))
	})
}

// Delete removes the checkpoint for source.
func (s *BadgerCheckpointStore) Delete(source string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrCheckpointStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(checkpointKey(source))
	})
}

// Close closes the underlying database. Safe to call twice.
func (s *BadgerCheckpointStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
