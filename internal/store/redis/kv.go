package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "studyroom"

// KV persists engine collections as Redis strings under a common prefix.
// Values are whole-collection JSON blobs, so plain GET/SET is all we need.
type KV struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings it to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*KV, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &KV{cli: cli}, nil
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.cli.Get(ctx, fmt.Sprintf("%s:%s", keyPrefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return b, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.cli.Set(ctx, fmt.Sprintf("%s:%s", keyPrefix, key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *KV) Close() error { return s.cli.Close() }
