package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"dealvalue_backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Backplane пересылает кадры между экземплярами сервиса
type Backplane interface {
	Publish(ctx context.Context, frame Frame) error
	// Subscribe возвращает кадры других экземпляров до отмены ctx
	Subscribe(ctx context.Context) (<-chan Frame, error)
	Close() error
}

type envelope struct {
	Origin string `json:"origin"`
	Type   int    `json:"type"`
	Data   []byte `json:"data"`
}

// RedisBackplane - backplane поверх redis pub/sub
type RedisBackplane struct {
	client   redis.UniversalClient
	channel  string
	instance string
}

// NewRedisBackplane подключается к redis по URL вида redis://host:6379/0
func NewRedisBackplane(ctx context.Context, redisURL, channel string) (*RedisBackplane, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid chat redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("chat redis unavailable: %w", err)
	}
	return NewRedisBackplaneFromClient(client, channel), nil
}

func NewRedisBackplaneFromClient(client redis.UniversalClient, channel string) *RedisBackplane {
	if channel == "" {
		channel = "chat"
	}
	return &RedisBackplane{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
	}
}

func (b *RedisBackplane) Publish(ctx context.Context, frame Frame) error {
	payload, err := json.Marshal(envelope{Origin: b.instance, Type: frame.Type, Data: frame.Data})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBackplane) Subscribe(ctx context.Context) (<-chan Frame, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan Frame)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.Warn("Malformed chat backplane message", "error", err.Error())
					continue
				}
				// свои кадры уже разосланы локально
				if env.Origin == b.instance {
					continue
				}
				select {
				case out <- Frame{Type: env.Type, Data: env.Data}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBackplane) Close() error {
	return b.client.Close()
}
