package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserID_NumericRoundTripStaysNumeric(t *testing.T) {
	req := require.New(t)

	var id UserID
	req.NoError(json.Unmarshal([]byte(`42`), &id))
	req.Equal(UserID("42"), id)

	out, err := json.Marshal(id)
	req.NoError(err)
	req.Equal(`42`, string(out))
}

func TestSpaceID_StringStaysString(t *testing.T) {
	req := require.New(t)

	var id SpaceID
	req.NoError(json.Unmarshal([]byte(`"room-A"`), &id))
	req.Equal(SpaceID("room-A"), id)

	out, err := json.Marshal(id)
	req.NoError(err)
	req.Equal(`"room-A"`, string(out))
}

func TestSpaceID_LeadingZeroIsNotNumeric(t *testing.T) {
	out, err := json.Marshal(SpaceID("007"))
	require.NoError(t, err)
	require.Equal(t, `"007"`, string(out))
}

func TestUserID_LongNumberComesBackAsString(t *testing.T) {
	req := require.New(t)

	// Given a 16 digit identifier sent as a JSON number
	var id UserID
	req.NoError(json.Unmarshal([]byte(`1234567890123456`), &id))
	req.Equal(UserID("1234567890123456"), id)

	// Then it is echoed as a string
	out, err := json.Marshal(id)
	req.NoError(err)
	req.Equal(`"1234567890123456"`, string(out))
}

func TestUnmarshalID_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "null", raw: `null`},
		{name: "empty string", raw: `""`},
		{name: "blank string", raw: `"   "`},
		{name: "fraction", raw: `1.5`},
		{name: "object", raw: `{"id":1}`},
		{name: "bool", raw: `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id SpaceID
			err := json.Unmarshal([]byte(tt.raw), &id)
			require.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestParseUserID(t *testing.T) {
	req := require.New(t)

	id, err := ParseUserID(" 17 ")
	req.NoError(err)
	req.Equal(UserID("17"), id)

	_, err = ParseUserID("")
	req.ErrorIs(err, ErrInvalidID)
}
