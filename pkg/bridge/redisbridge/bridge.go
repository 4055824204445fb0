// Package redisbridge adapts Redis Pub/Sub to goflux sources: channel
// subscriptions become cold message streams and publishes become
// operations. It keeps the Redis dependency out of the reactive core;
// import it only when a Redis-backed producer is wanted.
package redisbridge

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	gferrors "github.com/vnykmshr/goflux/pkg/common/errors"
	"github.com/vnykmshr/goflux/pkg/reactive/operation"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Message is one Pub/Sub delivery.
type Message struct {
	// Channel the message was published to.
	Channel string
	// Pattern that matched the channel, for pattern subscriptions.
	Pattern string
	// Payload is the raw message body.
	Payload string
}

// Config holds configuration for a Pub/Sub subscription stream.
type Config struct {
	// Redis client used for the subscription.
	Redis redis.UniversalClient

	// Channels to subscribe to.
	Channels []string

	// Patterns to pattern-subscribe to (PSUBSCRIBE). May be combined
	// with Channels.
	Patterns []string
}

// DefaultConfig returns a default bridge configuration. Redis and at
// least one channel or pattern must still be supplied.
func DefaultConfig() Config {
	return Config{}
}

// validateConfig validates the bridge configuration.
func validateConfig(config Config) error {
	if config.Redis == nil {
		return &ConfigError{"redis client is required"}
	}
	if len(config.Channels) == 0 && len(config.Patterns) == 0 {
		return &ConfigError{"at least one channel or pattern is required"}
	}
	for _, ch := range config.Channels {
		if ch == "" {
			return &ConfigError{"channel name cannot be empty"}
		}
	}
	for _, p := range config.Patterns {
		if p == "" {
			return &ConfigError{"pattern cannot be empty"}
		}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "redis bridge config error: " + e.Message
}

// Unwrap makes ConfigError match gferrors.ErrInvalidConfiguration
// under errors.Is.
func (e *ConfigError) Unwrap() error {
	return gferrors.ErrInvalidConfiguration
}

// Subscribe returns a cold stream of Pub/Sub messages. Each Observe
// opens its own subscription, so independent observers do not share a
// connection; disposing the observation closes it and stops the
// receiving goroutines.
func Subscribe(config Config) (stream.Stream[Message], error) {
	if err := validateConfig(config); err != nil {
		return stream.Stream[Message]{}, err
	}

	return stream.New(func(next func(Message)) stream.Disposable {
		ctx := context.Background()
		subs := make([]*redis.PubSub, 0, 2)
		if len(config.Channels) > 0 {
			subs = append(subs, config.Redis.Subscribe(ctx, config.Channels...))
		}
		if len(config.Patterns) > 0 {
			subs = append(subs, config.Redis.PSubscribe(ctx, config.Patterns...))
		}

		var wg sync.WaitGroup
		for _, ps := range subs {
			wg.Add(1)
			go func(ps *redis.PubSub) {
				defer wg.Done()
				// Channel is closed by PubSub.Close.
				for msg := range ps.Channel() {
					next(Message{Channel: msg.Channel, Pattern: msg.Pattern, Payload: msg.Payload})
				}
			}(ps)
		}

		return stream.NewDisposable(func() {
			for _, ps := range subs {
				_ = ps.Close()
			}
			wg.Wait()
		})
	}), nil
}

// Publish returns an operation that publishes payload to channel and
// emits the number of subscribers that received it. The publish runs
// once per observation; cancelling the observation aborts an in-flight
// publish.
func Publish(client redis.UniversalClient, channel string, payload any) operation.Operation[int64] {
	return operation.New(func(s operation.Sink[int64]) stream.Disposable {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			n, err := client.Publish(ctx, channel, payload).Result()
			if err != nil {
				s.Fail(err)
				return
			}
			s.Next(n)
			s.Succeed()
		}()
		return stream.NewDisposable(cancel)
	})
}
