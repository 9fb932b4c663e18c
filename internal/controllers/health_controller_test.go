package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpd/internal/models"
	"cpd/internal/services"
)

type healthMockSnapshots struct {
	services.SnapshotServiceInterface
}

func (m *healthMockSnapshots) SnapshotCount(_ models.Platform) int { return 5 }
func (m *healthMockSnapshots) HandleCount() int                    { return 2 }

func TestHealth_ReportsCounts(t *testing.T) {
	hc := NewHealthController(&healthMockSnapshots{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Snapshots)
	assert.Equal(t, 2, resp.Handles)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&healthMockSnapshots{})
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()

	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
