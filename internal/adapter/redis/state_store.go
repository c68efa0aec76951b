package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/boxvote/internal/codec"
	"github.com/pscheid92/boxvote/internal/domain"
)

type StateStore struct {
	rdb *goredis.Client
	key string
}

func NewStateStore(rdb *goredis.Client, seasonKey string) *StateStore {
	return &StateStore{rdb: rdb, key: seasonStateKey(seasonKey)}
}

func (s *StateStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *StateStore) Load(ctx context.Context) (domain.RoundState, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.NewRoundState(), nil
	}
	if err != nil {
		return domain.RoundState{}, fmt.Errorf("failed to read round state: %w", err)
	}
	return codec.Decode(raw), nil
}

func (s *StateStore) Save(ctx context.Context, state domain.RoundState) error {
	data, err := codec.Encode(state)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write round state: %w", err)
	}
	return nil
}

// CompareAndSwap writes next only if the stored state still equals prev.
// A concurrent write between WATCH and EXEC also surfaces as ErrStateConflict.
func (s *StateStore) CompareAndSwap(ctx context.Context, prev, next domain.RoundState) error {
	data, err := codec.Encode(next)
	if err != nil {
		return err
	}

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, s.key).Bytes()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("failed to read round state: %w", err)
		}
		if !codec.Equal(codec.Decode(raw), prev) {
			return domain.ErrStateConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	err = s.rdb.Watch(ctx, txf, s.key)
	if errors.Is(err, goredis.TxFailedErr) {
		return domain.ErrStateConflict
	}
	if err != nil {
		return fmt.Errorf("failed to swap round state: %w", err)
	}
	return nil
}

func seasonStateKey(seasonKey string) string {
	return "boxvote:season:" + seasonKey
}
