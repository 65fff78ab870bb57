package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

const maxIDLength = 128

var ErrInvalidID = errors.New("invalid identifier")

// UserID identifies one connected user. It is assigned outside this service
// and only referenced here.
type UserID string

// SpaceID identifies a room. Spaces are not validated against storage.
type SpaceID string

func ParseUserID(raw string) (UserID, error) {
	id, err := parseID(raw)
	return UserID(id), err
}

func ParseSpaceID(raw string) (SpaceID, error) {
	id, err := parseID(raw)
	return SpaceID(id), err
}

func (id UserID) String() string  { return string(id) }
func (id SpaceID) String() string { return string(id) }

func (id UserID) MarshalJSON() ([]byte, error) { return marshalID(string(id)) }

func (id *UserID) UnmarshalJSON(b []byte) error {
	s, err := unmarshalID(b)
	if err != nil {
		return err
	}
	*id = UserID(s)
	return nil
}

func (id SpaceID) MarshalJSON() ([]byte, error) { return marshalID(string(id)) }

func (id *SpaceID) UnmarshalJSON(b []byte) error {
	s, err := unmarshalID(b)
	if err != nil {
		return err
	}
	*id = SpaceID(s)
	return nil
}

func parseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxIDLength {
		return "", ErrInvalidID
	}
	return raw, nil
}

// Numeric identifiers go back on the wire as JSON numbers so clients that
// sent 7 get 7, not "7". Integers longer than 15 digits exceed what a
// float64 holds exactly, so they are echoed as strings even when they
// arrived as numbers.
func marshalID(s string) ([]byte, error) {
	if isCanonicalInt(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func unmarshalID(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", ErrInvalidID
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", ErrInvalidID
		}
		return parseID(s)
	}

	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return "", ErrInvalidID
	}
	return strconv.FormatInt(n, 10), nil
}

// isCanonicalInt reports whether s is an integer without leading zeros that
// JavaScript clients can hold without losing precision.
func isCanonicalInt(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || len(digits) > 15 {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return false
	}
	if digits == "0" && s != digits {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
