package audit

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/nats-io/nats.go"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes each event as a JSON message on a NATS subject.
type NATSSink struct {
	pub      publisher
	subject  string
	failures atomic.Uint64
}

func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	return newNATSSink(conn, subject)
}

func newNATSSink(pub publisher, subject string) *NATSSink {
	if subject == "" {
		subject = "authstate.audit"
	}
	return &NATSSink{pub: pub, subject: subject}
}

func (s *NATSSink) Emit(_ context.Context, event Event) {
	if s == nil || s.pub == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.failures.Add(1)
		return
	}
	if err := s.pub.Publish(s.subject+"."+event.EventType, data); err != nil {
		s.failures.Add(1)
	}
}

// Failures reports how many events could not be published.
func (s *NATSSink) Failures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}
