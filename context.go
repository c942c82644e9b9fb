package authstate

import "context"

type sourceContextKey struct{}
type notifyContextKey struct{}

// WithSource labels dispatches made with ctx. The label travels to
// observability and audit events in place of the configured
// Observer.Source.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceContextKey{}, source)
}

func sourceFromContext(ctx context.Context, fallback string) string {
	if ctx == nil {
		return fallback
	}

	source, _ := ctx.Value(sourceContextKey{}).(string)
	if source == "" {
		return fallback
	}

	return source
}

// notifyFrame records one container that is delivering notifications on the
// current call chain. Frames link outward so listeners that dispatch into a
// second container keep the first one marked.
type notifyFrame struct {
	c      *Container
	parent *notifyFrame
}

func withNotifying(ctx context.Context, c *Container) context.Context {
	parent, _ := ctx.Value(notifyContextKey{}).(*notifyFrame)
	return context.WithValue(ctx, notifyContextKey{}, &notifyFrame{c: c, parent: parent})
}

func isNotifying(ctx context.Context, c *Container) bool {
	if ctx == nil {
		return false
	}

	frame, _ := ctx.Value(notifyContextKey{}).(*notifyFrame)
	for ; frame != nil; frame = frame.parent {
		if frame.c == c {
			return true
		}
	}

	return false
}
