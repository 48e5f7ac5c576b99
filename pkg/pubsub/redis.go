package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type redisPubSub struct {
	client    *redis.Client
	pubsub    *redis.PubSub
	logger    *logger.CanonicalLogger
	messageCh chan Message
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewRedisPubSub(ctx context.Context, cfg RedisConfig, log *logger.CanonicalLogger) (PubSub, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Try a ping to validate connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	r := &redisPubSub{
		client:    client,
		logger:    log,
		messageCh: make(chan Message, 16),
	}

	log.Info("redis client initialized", logger.String("addr", addr))

	return r, nil
}

// Publish publishes a message to a Redis channel
func (r *redisPubSub) Publish(ctx context.Context, channel string, message string) error {
	if err := r.client.Publish(ctx, channel, message).Err(); err != nil {
		r.logger.WithError(err).Error("failed to publish message to redis")
		return err
	}
	return nil
}

// Ping checks if Redis connection is healthy
func (r *redisPubSub) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Subscribe subscribes to Redis channels
func (r *redisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if r.pubsub != nil {
		if err := r.pubsub.Subscribe(ctx, channels...); err != nil {
			return nil, fmt.Errorf("failed to subscribe to redis channels: %w", err)
		}
		return r.messageCh, nil
	}

	r.pubsub = r.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so publishes right after this call are not lost
	if _, err := r.pubsub.Receive(ctx); err != nil {
		_ = r.pubsub.Close()
		r.pubsub = nil
		return nil, fmt.Errorf("failed to subscribe to redis channels: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.listen(listenCtx)

	r.logger.Info("subscribed to redis channels", logger.Any("channels", channels))
	return r.messageCh, nil
}

// Unsubscribe unsubscribes from Redis channels
func (r *redisPubSub) Unsubscribe(ctx context.Context, channels ...string) error {
	if r.pubsub == nil {
		return nil
	}
	return r.pubsub.Unsubscribe(ctx, channels...)
}

// Close closes the Redis connection
func (r *redisPubSub) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		if r.pubsub != nil {
			_ = r.pubsub.Close()
		}
		if r.done != nil {
			<-r.done
		}
		if r.client != nil {
			if cerr := r.client.Close(); cerr != nil {
				r.logger.WithError(cerr).Error("failed to close redis client")
				err = cerr
			}
		}
		close(r.messageCh)
	})
	return err
}

// listen listens for messages from subscribed channels
func (r *redisPubSub) listen(ctx context.Context) {
	defer close(r.done)

	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping redis listener")
			return
		case m, ok := <-ch:
			if !ok {
				r.logger.Info("redis pubsub channel closed")
				return
			}
			select {
			case r.messageCh <- Message{Channel: m.Channel, Payload: m.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}
