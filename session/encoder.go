package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	sessionFormatVersionCurrent = 1

	flagAuthenticated byte = 1 << 0
	flagIdentity      byte = 1 << 1

	maxFieldLen = 1 << 16
)

var (
	// ErrInvalidEncoding is returned by [Decode] for truncated, oversized or
	// unknown-version input.
	ErrInvalidEncoding = errors.New("invalid session encoding")
	// ErrInconsistentSession is returned when a session violates the
	// Authenticated/Identity invariant.
	ErrInconsistentSession = errors.New("inconsistent session")
)

// Encode serializes s into the current binary schema.
func Encode(s Session) ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInconsistentSession
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, sessionFormatVersionCurrent)

	var flags byte
	if s.Authenticated {
		flags |= flagAuthenticated
	}
	if s.Identity != nil {
		flags |= flagIdentity
	}
	buf = append(buf, flags)

	if s.Identity != nil {
		for _, field := range []string{s.Identity.ID, s.Identity.DisplayName, s.Identity.ContactAddress} {
			if len(field) > maxFieldLen {
				return nil, errors.New("identity field too long")
			}
			buf = binary.AppendUvarint(buf, uint64(len(field)))
			buf = append(buf, field...)
		}
	}

	return buf, nil
}

// Decode parses data produced by [Encode].
func Decode(data []byte) (Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return Session{}, ErrInvalidEncoding
	}
	if version != sessionFormatVersionCurrent {
		return Session{}, ErrInvalidEncoding
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return Session{}, ErrInvalidEncoding
	}
	if flags&^(flagAuthenticated|flagIdentity) != 0 {
		return Session{}, ErrInvalidEncoding
	}

	s := Session{Authenticated: flags&flagAuthenticated != 0}

	if flags&flagIdentity != 0 {
		id := &Identity{}
		for _, dst := range []*string{&id.ID, &id.DisplayName, &id.ContactAddress} {
			field, err := readField(reader)
			if err != nil {
				return Session{}, err
			}
			*dst = field
		}
		s.Identity = id
	}

	if reader.Len() != 0 {
		return Session{}, ErrInvalidEncoding
	}
	if !s.Valid() {
		return Session{}, ErrInconsistentSession
	}

	return s, nil
}

func readField(reader *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(reader)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	if n > maxFieldLen || n > uint64(reader.Len()) {
		return "", ErrInvalidEncoding
	}
	field := make([]byte, n)
	if _, err := io.ReadFull(reader, field); err != nil {
		return "", ErrInvalidEncoding
	}
	return string(field), nil
}
