package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	req := require.New(t)
	h := NewHandler()

	// Given a healthy service
	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	req.Equal(http.StatusOK, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	req.Equal("ok", body.Status)

	// When it starts draining
	h.SetHealthy(false)
	rec = httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Then
	req.Equal(http.StatusServiceUnavailable, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	req.Equal("unhealthy", body.Status)
}
