package session

import (
	"errors"
	"testing"
)

func guest() Identity {
	return Identity{ID: "1", DisplayName: "Guest", ContactAddress: "guest@example.com"}
}

func TestApplyEstablishFromAnonymous(t *testing.T) {
	next, err := Apply(Initial(), EstablishIdentity(guest()))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !next.Authenticated || next.Identity == nil || *next.Identity != guest() {
		t.Fatalf("unexpected session: %+v", next)
	}
	if next.Phase() != Identified {
		t.Fatalf("expected identified, got %s", next.Phase())
	}
}

func TestApplyEstablishCopiesDetail(t *testing.T) {
	detail := guest()
	next, err := Apply(Initial(), Establish{Detail: &detail})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	detail.DisplayName = "mutated"
	if next.Identity.DisplayName != "Guest" {
		t.Fatal("session shares memory with the request detail")
	}
}

func TestApplyReidentifyReplacesIdentity(t *testing.T) {
	first, _ := Apply(Initial(), EstablishIdentity(guest()))
	other := Identity{ID: "2", DisplayName: "Admin"}
	next, err := Apply(first, EstablishIdentity(other))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if next.UserID() != "2" || next.Identity.ContactAddress != "" {
		t.Fatalf("expected identity replaced wholesale, got %+v", next.Identity)
	}
}

func TestApplyClearIsIdempotent(t *testing.T) {
	identified, _ := Apply(Initial(), EstablishIdentity(guest()))
	for _, start := range []Session{Initial(), identified} {
		cur := start
		for i := 0; i < 3; i++ {
			next, err := Apply(cur, Clear{})
			if err != nil {
				t.Fatalf("apply clear failed: %v", err)
			}
			if !next.Equal(Initial()) {
				t.Fatalf("expected anonymous, got %+v", next)
			}
			cur = next
		}
	}
}

func TestApplyRejectsInvalidEstablish(t *testing.T) {
	identified, _ := Apply(Initial(), EstablishIdentity(guest()))

	tests := []struct {
		name string
		req  Request
	}{
		{name: "nil detail", req: Establish{}},
		{name: "all empty", req: EstablishIdentity(Identity{})},
		{name: "empty id", req: EstablishIdentity(Identity{DisplayName: "x"})},
		{name: "blank display name", req: EstablishIdentity(Identity{ID: "1", DisplayName: "   "})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, start := range []Session{Initial(), identified} {
				next, err := Apply(start, tt.req)
				if !errors.Is(err, ErrInvalidTransitionRequest) {
					t.Fatalf("expected ErrInvalidTransitionRequest, got %v", err)
				}
				if !next.Equal(start) {
					t.Fatalf("state changed on rejection: %+v -> %+v", start, next)
				}
			}
		})
	}
}

func TestApplyRejectsNilRequest(t *testing.T) {
	next, err := Apply(Initial(), nil)
	if !errors.Is(err, ErrUnknownTransitionKind) {
		t.Fatalf("expected ErrUnknownTransitionKind, got %v", err)
	}
	if !next.Equal(Initial()) {
		t.Fatalf("state changed: %+v", next)
	}
}

func TestReplayRoundTripReturnsInitial(t *testing.T) {
	final, failed, err := Replay(Initial(), Clear{}, EstablishIdentity(guest()), Clear{})
	if err != nil || failed != -1 {
		t.Fatalf("replay failed at %d: %v", failed, err)
	}
	if !final.Equal(Initial()) {
		t.Fatalf("expected initial state, got %+v", final)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	reqs := []Request{
		EstablishIdentity(guest()),
		EstablishIdentity(Identity{ID: "2", DisplayName: "Second"}),
		Clear{},
		EstablishIdentity(Identity{ID: "3", DisplayName: "Third", ContactAddress: "t@example.com"}),
	}
	a, _, errA := Replay(Initial(), reqs...)
	b, _, errB := Replay(Initial(), reqs...)
	if errA != nil || errB != nil {
		t.Fatalf("replay failed: %v / %v", errA, errB)
	}
	if !a.Equal(b) {
		t.Fatalf("replays diverged: %+v vs %+v", a, b)
	}
	if a.UserID() != "3" {
		t.Fatalf("expected final user 3, got %q", a.UserID())
	}
}

func TestReplayStopsAtFirstRejection(t *testing.T) {
	final, failed, err := Replay(Initial(),
		EstablishIdentity(guest()),
		EstablishIdentity(Identity{}),
		Clear{},
	)
	if !errors.Is(err, ErrInvalidTransitionRequest) {
		t.Fatalf("expected ErrInvalidTransitionRequest, got %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected failure index 1, got %d", failed)
	}
	if final.UserID() != "1" {
		t.Fatalf("expected last good state to be kept, got %+v", final)
	}
}

func TestEnvelopeRequest(t *testing.T) {
	g := guest()
	tests := []struct {
		name    string
		env     Envelope
		want    Kind
		wantErr error
	}{
		{name: "establish", env: Envelope{Kind: "establish", Detail: &g}, want: KindEstablish},
		{name: "establish mixed case", env: Envelope{Kind: " Establish ", Detail: &g}, want: KindEstablish},
		{name: "clear", env: Envelope{Kind: "clear"}, want: KindClear},
		{name: "clear with detail", env: Envelope{Kind: "clear", Detail: &g}, wantErr: ErrInvalidTransitionRequest},
		{name: "establish without detail", env: Envelope{Kind: "establish"}, wantErr: ErrInvalidTransitionRequest},
		{name: "unknown", env: Envelope{Kind: "logout"}, wantErr: ErrUnknownTransitionKind},
		{name: "empty", env: Envelope{}, wantErr: ErrUnknownTransitionKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.env.Request()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Kind() != tt.want {
				t.Fatalf("expected kind %s, got %s", tt.want, req.Kind())
			}
		})
	}
}

func TestEnvelopeOfRoundTrip(t *testing.T) {
	for _, req := range []Request{EstablishIdentity(guest()), Clear{}} {
		env, err := EnvelopeOf(req)
		if err != nil {
			t.Fatalf("envelope failed: %v", err)
		}
		back, err := env.Request()
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		a, _ := Apply(Initial(), req)
		b, _ := Apply(Initial(), back)
		if !a.Equal(b) {
			t.Fatalf("envelope changed meaning of %s", req.Kind())
		}
	}
}
