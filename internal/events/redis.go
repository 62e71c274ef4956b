package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

const publishTimeout = 2 * time.Second

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes accepted callbacks as models.CallbackNotice JSON
// on a Redis Pub/Sub channel. Other events are ignored.
type RedisPublisher struct {
	Nop
	rdb     publisher
	closer  func() error
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher connects lazily; url uses the redis:// scheme.
func NewRedisPublisher(url, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	return &RedisPublisher{rdb: rdb, closer: rdb.Close, channel: channel, logger: logging.OrNop(logger)}, nil
}

func (p *RedisPublisher) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	notice := info.ToCallbackNotice(uuid.NewString(), time.Now())
	data, err := json.Marshal(notice)
	if err != nil {
		p.logger.Warn("monoparts.redis.encode_failed", append(logging.FieldsFromContext(ctx), zap.Error(err))...)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warn("monoparts.redis.publish_failed", append(logging.FieldsFromContext(ctx),
			zap.String("channel", p.channel),
			zap.String("event_id", notice.EventID),
			zap.Error(err),
		)...)
	}
}

func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
