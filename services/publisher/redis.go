package publisher

import (
	"context"
	"encoding/base64"

	"sjsage522/listingscraper/logger"

	"github.com/redis/go-redis/v9"
)

// MessageField is the stream entry field carrying the base64 encoded row
const MessageField = "b64_listing"

// RedisPublisher implements Publisher using Redis streams, one stream per region
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping() error {
	return p.client.Ping(p.ctx).Err()
}

// Stream returns the stream name used for region
func (p *RedisPublisher) Stream(region string) string {
	return p.streamPrefix + ":" + region
}

// Publish publishes a message to the region's Redis stream.
// The message is base64 encoded before publishing.
func (p *RedisPublisher) Publish(region string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.Stream(region),
		Values: map[string]interface{}{
			MessageField: encodedMessage,
		},
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		trimmed, err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Result()
		if err != nil {
			return err
		}
		logger.ForPublisher().Debug().
			Str("stream", stream).
			Int64("trimmed", trimmed).
			Msg("Trimmed stream")
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
