package session

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeIdentified(t *testing.T) {
	in := Session{
		Authenticated: true,
		Identity: &Identity{
			ID:             "1",
			DisplayName:    "Guest",
			ContactAddress: "guest@example.com",
		},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if data[0] != sessionFormatVersionCurrent {
		t.Fatalf("expected version byte %d, got %d", sessionFormatVersionCurrent, data[0])
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestEncodeDecodeAnonymousIsTwoBytes(t *testing.T) {
	data, err := Encode(Initial())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 bytes, got %d", len(data))
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Authenticated || out.Identity != nil {
		t.Fatalf("expected anonymous session, got %+v", out)
	}
}

func TestEncodeLongContactAddress(t *testing.T) {
	in := Session{
		Authenticated: true,
		Identity: &Identity{
			ID:             "u-long",
			DisplayName:    "Long",
			ContactAddress: strings.Repeat("a", 300) + "@example.com",
		},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Identity.ContactAddress != in.Identity.ContactAddress {
		t.Fatal("contact address did not survive round trip")
	}
}

func TestEncodeRejectsInconsistentSession(t *testing.T) {
	tests := []Session{
		{Authenticated: true},
		{Authenticated: false, Identity: &Identity{ID: "1", DisplayName: "x"}},
	}
	for _, s := range tests {
		if _, err := Encode(s); !errors.Is(err, ErrInconsistentSession) {
			t.Fatalf("expected ErrInconsistentSession for %+v, got %v", s, err)
		}
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	valid, err := Encode(Session{Authenticated: true, Identity: &Identity{ID: "1", DisplayName: "Guest"}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrInvalidEncoding},
		{name: "unsupported version", data: []byte{99, 0}, want: ErrInvalidEncoding},
		{name: "missing flags", data: []byte{1}, want: ErrInvalidEncoding},
		{name: "unknown flag bits", data: []byte{1, 0x80}, want: ErrInvalidEncoding},
		{name: "truncated identity", data: valid[:len(valid)-1], want: ErrInvalidEncoding},
		{name: "trailing bytes", data: append(append([]byte{}, valid...), 0), want: ErrInvalidEncoding},
		{name: "length past end", data: []byte{1, 3, 200, 'a'}, want: ErrInvalidEncoding},
		{name: "authenticated without identity", data: []byte{1, flagAuthenticated}, want: ErrInconsistentSession},
		{name: "identity without authenticated", data: []byte{1, flagIdentity, 1, 'a', 1, 'b', 0}, want: ErrInconsistentSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
