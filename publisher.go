package clientauth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// DefaultEventStream is the stream auth events are appended to.
const DefaultEventStream = "clientauth.events"

// DefaultPublishTimeout bounds how long a single publish may hold up the
// authentication response.
const DefaultPublishTimeout = 2 * time.Second

// EventPublisherFunc adapts a function to the EventPublisher interface.
type EventPublisherFunc func(ctx context.Context, event AuthEvent) error

// Publish implements EventPublisher.
func (f EventPublisherFunc) Publish(ctx context.Context, event AuthEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, AuthEvent) error {
	return nil
}

func normalizeEventPublisher(p EventPublisher) EventPublisher {
	if p == nil {
		return noopEventPublisher{}
	}
	return p
}

// RedisStreamPublisher appends auth events to a redis stream. Entries carry
// the client id so a consumer group can partition by client and keep
// per-client ordering. Failures are counted and logged, never retried here:
// the authentication response does not wait on the stream.
type RedisStreamPublisher struct {
	client   redis.UniversalClient
	stream   string
	timeout  time.Duration
	maxLen   int64
	failures atomic.Uint64
	logger   Logger
}

// NewRedisStreamPublisher builds a publisher appending to the given stream.
// An empty stream name uses DefaultEventStream.
func NewRedisStreamPublisher(client redis.UniversalClient, stream string) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &RedisStreamPublisher{
		client:  client,
		stream:  stream,
		timeout: DefaultPublishTimeout,
		logger:  defLogger{},
	}
}

// NewRedisStreamPublisherFromConfig builds a publisher from auth options.
func NewRedisStreamPublisherFromConfig(client redis.UniversalClient, cfg Config) *RedisStreamPublisher {
	var stream string
	timeout := DefaultPublishTimeout
	if cfg != nil {
		stream = cfg.GetEventStream()
		if t := cfg.GetPublishTimeout(); t > 0 {
			timeout = t
		}
	}
	return NewRedisStreamPublisher(client, stream).WithTimeout(timeout)
}

func (p *RedisStreamPublisher) WithLogger(logger Logger) *RedisStreamPublisher {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithTimeout bounds each publish call. Zero disables the internal timeout
// and defers to the caller's context.
func (p *RedisStreamPublisher) WithTimeout(timeout time.Duration) *RedisStreamPublisher {
	p.timeout = timeout
	return p
}

// WithMaxLen caps the stream length (approximate trimming).
func (p *RedisStreamPublisher) WithMaxLen(maxLen int64) *RedisStreamPublisher {
	p.maxLen = maxLen
	return p
}

// Publish appends the event to the stream, bounded by the configured
// timeout. On failure the event is counted and logged so it is observably,
// not silently, dropped.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event AuthEvent) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	values := map[string]any{
		"client_id": event.ClientID,
		"outcome":   event.Outcome,
		"timestamp": event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if event.Reason != "" {
		values["reason"] = event.Reason
	}

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: values,
	}).Err()

	if err != nil {
		p.failures.Add(1)
		p.logger.Error("failed to publish auth event", "stream", p.stream, "client_id", event.ClientID, "error", err)
		return errors.Wrap(err, errors.CategoryOperation, "failed to publish auth event")
	}

	return nil
}

// FailureCount reports how many events could not be published.
func (p *RedisStreamPublisher) FailureCount() uint64 {
	return p.failures.Load()
}

var _ EventPublisher = (*RedisStreamPublisher)(nil)
