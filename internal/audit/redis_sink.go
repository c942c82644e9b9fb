package audit

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultStreamMaxLen = 10000

// RedisStreamSink appends each event to a Redis stream with XADD. The stream
// is trimmed approximately to MaxLen entries.
type RedisStreamSink struct {
	client   redis.UniversalClient
	stream   string
	maxLen   int64
	timeout  time.Duration
	failures atomic.Uint64
}

// RedisStreamConfig configures a [RedisStreamSink].
type RedisStreamConfig struct {
	Stream  string
	MaxLen  int64
	Timeout time.Duration
}

func NewRedisStreamSink(client redis.UniversalClient, cfg RedisStreamConfig) *RedisStreamSink {
	if cfg.Stream == "" {
		cfg.Stream = "authstate:audit"
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultStreamMaxLen
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	return &RedisStreamSink{
		client:  client,
		stream:  cfg.Stream,
		maxLen:  cfg.MaxLen,
		timeout: cfg.Timeout,
	}
}

func (s *RedisStreamSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values := map[string]any{
		"timestamp":     event.Timestamp.UTC().Format(time.RFC3339Nano),
		"event_type":    event.EventType,
		"transition_id": event.TransitionID,
		"revision":      strconv.FormatUint(event.Revision, 10),
		"kind":          event.Kind,
		"user_id":       event.UserID,
		"source":        event.Source,
		"success":       strconv.FormatBool(event.Success),
	}
	if event.Error != "" {
		values["error"] = event.Error
	}
	if len(event.Snapshot) > 0 {
		values["snapshot"] = event.Snapshot
	}
	for k, v := range event.Metadata {
		values["meta:"+k] = v
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		s.failures.Add(1)
	}
}

// Failures reports how many events could not be written.
func (s *RedisStreamSink) Failures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}
