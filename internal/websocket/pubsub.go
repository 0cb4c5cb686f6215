package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe подписывается на канал. Канал сообщений закрывается после отмены ctx.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RedisPubSub реализует PubSubProvider поверх Redis Pub/Sub.
// Клиент общий с кешем, поэтому RedisPubSub его не закрывает.
type RedisPubSub struct {
	client redis.UniversalClient
	log    logrus.FieldLogger
}

// NewRedisPubSub создает провайдера Pub/Sub на существующем клиенте
func NewRedisPubSub(client redis.UniversalClient, log logrus.FieldLogger) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client is required for RedisPubSub")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisPubSub{client: client, log: log.WithField("component", "redis_pubsub")}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	return p.client.Publish(ctx, channel, message).Err()
}

// Subscribe подписывается на указанный канал Redis
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := p.client.Subscribe(ctx, channel)

	// Ждем подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	out := make(chan []byte, 100)
	go func() {
		defer func() {
			pubsub.Close()
			close(out)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					p.log.WithField("channel", channel).Warn("Redis channel closed")
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
