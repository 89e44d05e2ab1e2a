package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/store"
)

// RedisRepo is a store.Backend and store.Relay on one Redis connection. Keys
// live under "<namespace>:state:<key>", events travel on
// "<namespace>:events".
type RedisRepo struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

func NewRedisRepo(ctx context.Context, url, namespace string, logger *zap.Logger) (*RedisRepo, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisRepoFromClient(client, namespace, logger), nil
}

func NewRedisRepoFromClient(client *redis.Client, namespace string, logger *zap.Logger) *RedisRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRepo{client: client, namespace: namespace, logger: logger}
}

func (r *RedisRepo) stateKey(key string) string {
	return r.namespace + ":state:" + key
}

func (r *RedisRepo) channel() string {
	return r.namespace + ":events"
}

func (r *RedisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.stateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	return b, err
}

func (r *RedisRepo) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.stateKey(key), value, 0).Err()
}

func (r *RedisRepo) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.stateKey(key)).Err()
}

// Purge removes several keys at once and reports how many existed.
func (r *RedisRepo) Purge(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.stateKey(k)
	}
	return r.client.Del(ctx, full...).Result()
}

func (r *RedisRepo) Publish(ctx context.Context, ev store.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel(), b).Err()
}

// Listen subscribes to the event channel until ctx is done. Undecodable
// messages are logged and skipped.
func (r *RedisRepo) Listen(ctx context.Context, fn func(store.Event)) error {
	sub := r.client.Subscribe(ctx, r.channel())
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel(), err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev store.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Warn("dropping malformed event", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}
