// internal/events/redis_stream.go
// Redis Streams implementation of Stream

package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// RedisStream stores events in a Redis stream
type RedisStream struct {
	client *redis.Client
	name   string
	maxLen int64
}

// NewRedisStream wraps a client. maxLen > 0 trims the stream approximately on append.
func NewRedisStream(client *redis.Client, name string, maxLen int64) *RedisStream {
	if name == "" {
		name = DefaultStream
	}
	return &RedisStream{client: client, name: name, maxLen: maxLen}
}

func (s *RedisStream) Name() string {
	return s.name
}

func (s *RedisStream) Append(ctx context.Context, values map[string]interface{}) (string, error) {
	args := &redis.XAddArgs{
		Stream: s.name,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", s.name, err)
	}
	return id, nil
}

func (s *RedisStream) EnsureGroup(ctx context.Context, group string) error {
	err := s.client.XGroupCreateMkStream(ctx, s.name, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s: %w", group, err)
	}
	return nil
}

func (s *RedisStream) ReadGroup(ctx context.Context, group, consumer string, opts ReadOptions) ([]Message, error) {
	id := ">"
	block := opts.Block
	if opts.Pending {
		id = "0"
		block = 0
	}
	if block <= 0 {
		// go-redis sends BLOCK for any non-negative duration
		block = -1
	}

	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{s.name, id},
		Count:    opts.Count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if strings.HasPrefix(err.Error(), "NOGROUP") {
			return nil, ErrNoGroup
		}
		return nil, fmt.Errorf("xreadgroup %s/%s: %w", s.name, group, err)
	}

	var out []Message
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			out = append(out, Message{ID: msg.ID, Values: msg.Values})
		}
	}
	return out, nil
}

func (s *RedisStream) Ack(ctx context.Context, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, s.name, group, ids...).Err(); err != nil {
		return fmt.Errorf("xack %s/%s: %w", s.name, group, err)
	}
	return nil
}

// Len reports the number of entries currently in the stream
func (s *RedisStream) Len(ctx context.Context) (int64, error) {
	return s.client.XLen(ctx, s.name).Result()
}

var _ Stream = (*RedisStream)(nil)
