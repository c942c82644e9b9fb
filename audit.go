package authstate

import (
	"io"

	internalaudit "github.com/MrEthical07/authstate/internal/audit"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// AuditEvent is the audit record of one dispatch.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the container's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// RedisStreamSink appends audit events to a Redis stream.
type RedisStreamSink = internalaudit.RedisStreamSink

// RedisStreamConfig configures a [RedisStreamSink].
type RedisStreamConfig = internalaudit.RedisStreamConfig

// NATSSink publishes audit events to NATS.
type NATSSink = internalaudit.NATSSink

const (
	AuditEventTransitionCommitted = internalaudit.EventTransitionCommitted
	AuditEventTransitionRejected  = internalaudit.EventTransitionRejected
)

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewRedisStreamSink returns a sink writing to cfg.Stream (default
// "authstate:audit").
func NewRedisStreamSink(client redis.UniversalClient, cfg RedisStreamConfig) *RedisStreamSink {
	return internalaudit.NewRedisStreamSink(client, cfg)
}

// NewNATSSink returns a sink publishing to subject.<event_type> (default
// subject "authstate.audit").
func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	return internalaudit.NewNATSSink(conn, subject)
}
