package session

import "fmt"

// Apply computes the session that results from applying req to cur.
//
// Apply is a pure function of its two arguments. On error the returned session
// is cur unchanged. Authenticated and Identity always change together.
func Apply(cur Session, req Request) (Session, error) {
	switch r := req.(type) {
	case Establish:
		if r.Detail == nil {
			return cur, fmt.Errorf("%w: establish requires detail", ErrInvalidTransitionRequest)
		}
		if err := r.Detail.Validate(); err != nil {
			return cur, err
		}
		id := *r.Detail
		return Session{Authenticated: true, Identity: &id}, nil
	case Clear:
		return Session{}, nil
	case nil:
		return cur, fmt.Errorf("%w: nil request", ErrUnknownTransitionKind)
	default:
		// Unreachable outside this package: Request is sealed.
		return cur, fmt.Errorf("%w: %T", ErrUnknownTransitionKind, req)
	}
}

// Replay folds reqs over initial with [Apply], stopping at the first rejected
// request. It returns the last good session and the index of the failing
// request (-1 when every request applied).
func Replay(initial Session, reqs ...Request) (Session, int, error) {
	cur := initial
	for i, req := range reqs {
		next, err := Apply(cur, req)
		if err != nil {
			return cur, i, err
		}
		cur = next
	}
	return cur, -1, nil
}
