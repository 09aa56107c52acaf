package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const invalidatorCloseTimeout = 5 * time.Second

// InvalidationMessage is broadcast when a collection scope changes.
// An empty scope means drop everything.
type InvalidationMessage struct {
	Scope     string `json:"scope"`
	Timestamp int64  `json:"timestamp"`
}

// Invalidator broadcasts cache invalidations to other instances
type Invalidator interface {
	PublishScope(ctx context.Context, scope string) error
	Close() error
}

// NopInvalidator is used when Redis is disabled; single-instance
// deployments only need the local cache drop.
type NopInvalidator struct{}

// PublishScope implements Invalidator
func (NopInvalidator) PublishScope(context.Context, string) error { return nil }

// Close implements Invalidator
func (NopInvalidator) Close() error { return nil }

// RedisInvalidator broadcasts invalidations over Redis Pub/Sub
type RedisInvalidator struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisInvalidatorOption is a functional option for RedisInvalidator
type RedisInvalidatorOption func(*RedisInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator with its own Redis client
func NewRedisInvalidator(addr, password string, db int, opts ...RedisInvalidatorOption) (*RedisInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	inv := &RedisInvalidator{
		client:     client,
		ownsClient: true,
		channel:    "crm:cache:invalidate",
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// NewRedisInvalidatorWithClient creates an invalidator over a shared client.
// The caller retains ownership of the client.
func NewRedisInvalidatorWithClient(client *redis.Client, opts ...RedisInvalidatorOption) *RedisInvalidator {
	inv := &RedisInvalidator{
		client:     client,
		ownsClient: false,
		channel:    "crm:cache:invalidate",
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// PublishScope implements Invalidator
func (i *RedisInvalidator) PublishScope(ctx context.Context, scope string) error {
	msg := InvalidationMessage{
		Scope:     scope,
		Timestamp: time.Now().UnixNano(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish invalidation",
			zap.String("channel", i.channel),
			zap.String("scope", scope),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}

	i.logger.Debug("Published cache invalidation",
		zap.String("scope", scope),
		zap.String("channel", i.channel))
	return nil
}

// Subscribe listens for invalidations and applies them to the local cache.
// This method blocks and should run in its own goroutine.
func (i *RedisInvalidator) Subscribe(ctx context.Context, local QueryCache) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to cache invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var inv InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			if inv.Scope == "" {
				local.InvalidateAll()
			} else {
				local.InvalidateScope(inv.Scope)
			}
		}
	}
}

func (i *RedisInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription and releases the client if owned
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(invalidatorCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

// Compile-time interface checks
var (
	_ Invalidator = (*RedisInvalidator)(nil)
	_ Invalidator = NopInvalidator{}
)
