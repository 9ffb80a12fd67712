package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skillbridge/internal/domain"
)

const redisKeyPrefix = "skillbridge:analysis:"

// RedisStore keeps sessions in Redis so several server instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects and pings Redis. Callers fall back to MemoryStore on error.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Put(ctx context.Context, state *domain.AnalysisState) error {
	b, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+state.ID, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", state.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.AnalysisState, error) {
	b, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return decode(b)
}

// Update uses WATCH/MULTI so a concurrent writer forces a retry instead of a lost update.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*domain.AnalysisState) error) (*domain.AnalysisState, error) {
	key := redisKeyPrefix + id
	var result *domain.AnalysisState

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		state, err := decode(b)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		out, err := encode(state)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, out, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			result = state
		}
		return err
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}
	return nil, fmt.Errorf("update session %s: too much contention", id)
}

var _ Store = (*RedisStore)(nil)
