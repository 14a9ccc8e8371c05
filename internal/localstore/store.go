// Package localstore is the durable local tier of settings resolution: a
// goleveldb key/value store that mirrors the last successfully fetched
// record per topic so resolution can degrade gracefully while the remote
// store is unreachable. It survives process restarts.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/containerd/errdefs"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/fleetrent/fleetrent/internal/settings"
)

const keyPrefix = "settings:"

// envelope is what gets serialized per topic: the record plus the moment it
// was fetched from the remote store, so consumers can judge staleness.
type envelope struct {
	Record      settings.Record `json:"record"`
	RetrievedAt time.Time       `json:"retrieved_at"`
}

// Store is a topic-keyed fallback store.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the fallback database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open fallback store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRecord overwrites the fallback record for topic.
func (s *Store) PutRecord(topic string, rec settings.Record, retrievedAt time.Time) error {
	payload, err := json.Marshal(envelope{Record: rec, RetrievedAt: retrievedAt})
	if err != nil {
		return fmt.Errorf("marshal fallback record: %w", err)
	}
	if err := s.db.Put([]byte(keyPrefix+topic), payload, nil); err != nil {
		return fmt.Errorf("write fallback record: %w", err)
	}
	return nil
}

// GetRecord returns the most recently persisted record for topic and when it
// was retrieved. Absence is classified as errdefs.ErrNotFound.
func (s *Store) GetRecord(topic string) (settings.Record, time.Time, error) {
	payload, err := s.db.Get([]byte(keyPrefix+topic), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return settings.Record{}, time.Time{}, fmt.Errorf("no fallback record for topic %q: %w", topic, errdefs.ErrNotFound)
		}
		return settings.Record{}, time.Time{}, fmt.Errorf("read fallback record: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return settings.Record{}, time.Time{}, fmt.Errorf("decode fallback record: %w", err)
	}
	return env.Record, env.RetrievedAt, nil
}
