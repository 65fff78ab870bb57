package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	req := require.New(t)

	cfg, err := Load("")
	req.NoError(err)

	req.Equal("0.0.0.0", cfg.HTTP.Host)
	req.Equal(uint16(8000), cfg.HTTP.Port)
	req.Equal(64, cfg.WebSocket.SendQueueSize)
	req.Equal(60*time.Second, cfg.WebSocket.PongWait)
	req.False(cfg.Presence.RequireMembership)
	req.Equal("zap", cfg.Logger.Logger)
	req.False(cfg.Messaging.Enabled)
	req.False(cfg.Mongo.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http:
  port: 9090
websocket:
  send_queue_size: 8
  pong_wait: 30s
  ping_period: 20s
presence:
  require_membership: true
logger:
  logger: zerolog
`)
	req.NoError(os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	req.NoError(err)

	req.Equal(uint16(9090), cfg.HTTP.Port)
	req.Equal(8, cfg.WebSocket.SendQueueSize)
	req.Equal(30*time.Second, cfg.WebSocket.PongWait)
	req.Equal(20*time.Second, cfg.WebSocket.PingPeriod)
	req.True(cfg.Presence.RequireMembership)
	req.Equal("zerolog", cfg.Logger.Logger)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	req := require.New(t)

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("PRESENCE_REQUIRE_MEMBERSHIP", "true")

	cfg, err := Load("")
	req.NoError(err)

	req.Equal(uint16(7070), cfg.HTTP.Port)
	req.True(cfg.Presence.RequireMembership)
}

func TestLoad_RejectsPingPeriodLongerThanPongWait(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("websocket:\n  pong_wait: 10s\n  ping_period: 15s\n"), 0o600))

	_, err := Load(path)
	req.Error(err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
