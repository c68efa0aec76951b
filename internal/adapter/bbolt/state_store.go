package bbolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pscheid92/boxvote/internal/codec"
	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/platform/retry"
)

const (
	seasonsBucket = "seasons"
	openTimeout   = 2 * time.Second
)

// StateStore persists the round state in an on-device bbolt file, one key per season.
type StateStore struct {
	db        *bolt.DB
	seasonKey []byte
}

var openPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 100 * time.Millisecond,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Warn("State file locked by another process, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

// Open opens (or creates) the bbolt file at path. A file locked by another process
// is retried a few times before giving up.
func Open(ctx context.Context, path, seasonKey string) (*StateStore, error) {
	classify := func(err error) retry.Action {
		if errors.Is(err, bolt.ErrTimeout) {
			return retry.Retry
		}
		return retry.Stop
	}

	db, err := retry.Do(ctx, openPolicy, classify, func(context.Context) (*bolt.DB, error) {
		return bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state file %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(seasonsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create seasons bucket: %w", err)
	}

	return &StateStore{db: db, seasonKey: []byte(seasonKey)}, nil
}

func (s *StateStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	return nil
}

// Ping verifies the file is readable. Used by the readiness probe.
func (s *StateStore) Ping(_ context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(seasonsBucket)) == nil {
			return fmt.Errorf("bucket %s missing", seasonsBucket)
		}
		return nil
	})
}

func (s *StateStore) Load(_ context.Context) (domain.RoundState, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw = bytes.Clone(tx.Bucket([]byte(seasonsBucket)).Get(s.seasonKey))
		return nil
	})
	if err != nil {
		return domain.RoundState{}, fmt.Errorf("failed to read round state: %w", err)
	}
	return codec.Decode(raw), nil
}

func (s *StateStore) Save(_ context.Context, state domain.RoundState) error {
	data, err := codec.Encode(state)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(seasonsBucket)).Put(s.seasonKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to write round state: %w", err)
	}
	return nil
}

// CompareAndSwap compares the repaired stored state with prev and writes next inside one
// read-write transaction. bbolt serializes writers, so the check and the write are atomic.
func (s *StateStore) CompareAndSwap(_ context.Context, prev, next domain.RoundState) error {
	data, err := codec.Encode(next)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seasonsBucket))
		current := codec.Decode(bucket.Get(s.seasonKey))
		if !codec.Equal(current, prev) {
			return domain.ErrStateConflict
		}
		return bucket.Put(s.seasonKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to swap round state: %w", err)
	}
	return nil
}
