package authstate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/authstate/observability"
	"github.com/MrEthical07/authstate/session"
	"github.com/google/uuid"
)

// AuditErrorCode is the stable error label written to audit events.
type AuditErrorCode string

const (
	auditErrInvalidRequest AuditErrorCode = "invalid_request"
	auditErrUnknownKind    AuditErrorCode = "unknown_kind"
	auditErrReentrant      AuditErrorCode = "reentrant_dispatch"
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidTransitionRequest):
		return auditErrInvalidRequest
	case errors.Is(err, ErrUnknownTransitionKind):
		return auditErrUnknownKind
	case errors.Is(err, ErrReentrantDispatch):
		return auditErrReentrant
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	default:
		return auditErrInternal
	}
}

func kindOf(req Request) string {
	if req == nil {
		return ""
	}
	return string(req.Kind())
}

func (c *Container) committed(ctx context.Context, req Request, next session.Session, rev uint64, notified int, elapsed time.Duration) {
	switch req.(type) {
	case session.Establish:
		c.metrics.Inc(MetricDispatchEstablish)
	case session.Clear:
		c.metrics.Inc(MetricDispatchClear)
	}
	c.metrics.Observe(MetricDispatchLatency, elapsed)

	kind := kindOf(req)
	transitionID := uuid.NewString()

	c.observe(ctx, observability.EventDispatchCommitted, observability.LevelInfo, map[string]any{
		"transition_id": transitionID,
		"kind":          kind,
		"revision":      rev,
		"phase":         next.Phase().String(),
		"user_id":       next.UserID(),
		"listeners":     notified,
		"elapsed":       elapsed,
	})

	c.emitAudit(ctx, AuditEvent{
		EventType:    AuditEventTransitionCommitted,
		TransitionID: transitionID,
		Revision:     rev,
		Kind:         kind,
		UserID:       next.UserID(),
		Success:      true,
	}, func() map[string]string {
		return map[string]string{
			"phase":     next.Phase().String(),
			"listeners": strconv.Itoa(notified),
		}
	}, next)
}

func (c *Container) rejected(ctx context.Context, req Request, err error) {
	c.rejectedKind(ctx, kindOf(req), err)
}

func (c *Container) rejectedKind(ctx context.Context, kind string, err error) {
	switch {
	case errors.Is(err, ErrInvalidTransitionRequest):
		c.metrics.Inc(MetricDispatchInvalid)
	case errors.Is(err, ErrUnknownTransitionKind):
		c.metrics.Inc(MetricDispatchUnknownKind)
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	rev := c.revision.Load()
	transitionID := uuid.NewString()

	c.observe(ctx, observability.EventDispatchRejected, observability.LevelWarning, map[string]any{
		"transition_id": transitionID,
		"kind":          kind,
		"revision":      rev,
		"error":         err.Error(),
	})

	c.emitAudit(ctx, AuditEvent{
		EventType:    AuditEventTransitionRejected,
		TransitionID: transitionID,
		Revision:     rev,
		Kind:         kind,
		UserID:       c.state.Load().UserID(),
		Error:        string(auditErrorCode(err)),
	}, nil, session.Session{})
}

func (c *Container) emitAudit(ctx context.Context, event AuditEvent, metadataBuilder func() map[string]string, snapshot session.Session) {
	if c.audit == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	event.Source = sourceFromContext(ctx, c.config.Observer.Source)
	if metadataBuilder != nil {
		event.Metadata = metadataBuilder()
	}
	if event.Success && c.config.Audit.IncludeSnapshot {
		if data, err := session.Encode(snapshot); err == nil {
			event.Snapshot = data
		}
	}

	c.audit.Emit(ctx, event)
}

func (c *Container) observe(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	if _, ok := c.observer.(observability.NoOpObserver); ok {
		return
	}
	c.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    sourceFromContext(ctx, c.config.Observer.Source),
		Data:      data,
	})
}
