package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	req := require.New(t)

	t.Setenv("METAVERSE_TEST_STRING", "hello")
	t.Setenv("METAVERSE_TEST_INT", "42")
	t.Setenv("METAVERSE_TEST_BAD_INT", "forty-two")
	t.Setenv("METAVERSE_TEST_BOOL", "true")

	req.Equal("hello", GetString("METAVERSE_TEST_STRING", "fallback"))
	req.Equal("fallback", GetString("METAVERSE_TEST_MISSING", "fallback"))
	req.Equal(42, GetInt("METAVERSE_TEST_INT", 1))
	req.Equal(1, GetInt("METAVERSE_TEST_BAD_INT", 1))
	req.True(GetBool("METAVERSE_TEST_BOOL", false))
	req.False(GetBool("METAVERSE_TEST_MISSING", false))
}
