package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpd/internal/models"
	"cpd/internal/services"
	"cpd/internal/testutil"
)

// --- local mocks (scoped to controller tests) ---

type mockSnapshots struct {
	services.SnapshotServiceInterface
	handles   map[string][]models.PlatformHandle
	unlinked  []models.Platform
	linked    []models.PlatformHandle
	handleSet map[string]bool
}

func (m *mockSnapshots) HandlesFor(userID string) []models.PlatformHandle {
	return m.handles[userID]
}

func (m *mockSnapshots) LinkHandle(userID string, p models.Platform, handle string) models.PlatformHandle {
	h := models.PlatformHandle{UserID: userID, Platform: p, Handle: handle, Verified: true}
	m.linked = append(m.linked, h)
	return h
}

func (m *mockSnapshots) Handle(userID string, p models.Platform) (models.PlatformHandle, bool) {
	if m.handleSet[userID+":"+string(p)] {
		return models.PlatformHandle{UserID: userID, Platform: p}, true
	}
	return models.PlatformHandle{}, false
}

func (m *mockSnapshots) UnlinkHandle(_ string, p models.Platform) {
	m.unlinked = append(m.unlinked, p)
}

type mockAnalytics struct {
	aggregateCalls int
	lastMode       services.AggregationMode
	lastPeers      []string
}

func (m *mockAnalytics) Reconstruct(userID string, p models.Platform, days int) models.DailySeries {
	return models.DailySeries{UserID: userID, Platform: p}
}

func (m *mockAnalytics) ReconstructOverall(userID string, days int) models.DailySeries {
	return models.DailySeries{UserID: userID, Platform: models.ModeOverall}
}

func (m *mockAnalytics) SeriesFor(userID string, p models.Platform, days int) models.DailySeries {
	return models.DailySeries{UserID: userID, Platform: p}
}

func (m *mockAnalytics) Aggregate(primary string, peers []string, _ models.Platform, mode services.AggregationMode, _ int) services.AlignedSeries {
	m.aggregateCalls++
	m.lastMode = mode
	m.lastPeers = peers
	return services.AlignedSeries{Dates: []string{"2026-08-31"}}
}

func (m *mockAnalytics) TopicBreakdown(userID string, _ models.Platform) map[string]int {
	return map[string]int{"dp": 3}
}

type mockConsistency struct{}

func (m *mockConsistency) ComputeActivity(_ string, _ models.Platform, _ int) ([]models.ActivityDay, models.ConsistencyMetrics) {
	return []models.ActivityDay{{Date: "2026-08-30", Count: 2}}, models.ConsistencyMetrics{ActiveDays: 1}
}

type mockRefresh struct {
	refreshed   []models.Platform
	ingestCount int
}

func (m *mockRefresh) Ingest(_ context.Context, _ string, _ models.Platform, _ string) (int, error) {
	return m.ingestCount, nil
}

func (m *mockRefresh) RefreshUser(_ context.Context, _ string, filter models.Platform) int {
	m.refreshed = append(m.refreshed, filter)
	return 7
}

func (m *mockRefresh) SweepAll(_ context.Context) (int, int) { return 0, 0 }

type mockGraph struct {
	friends map[string]bool
	peers   []string
}

func (m *mockGraph) IsFriend(a, b string) bool { return m.friends[a+":"+b] }

func (m *mockGraph) TopPeersByRating(_ string, _ models.Platform, limit int) []string {
	if len(m.peers) > limit {
		return m.peers[:limit]
	}
	return m.peers
}

// --- helpers ---

type fixture struct {
	ac        *ApiController
	snapshots *mockSnapshots
	analytics *mockAnalytics
	refresh   *mockRefresh
	graph     *mockGraph
	cache     *testutil.MockCache
}

func newFixture() *fixture {
	f := &fixture{
		snapshots: &mockSnapshots{handles: map[string][]models.PlatformHandle{}, handleSet: map[string]bool{}},
		analytics: &mockAnalytics{},
		refresh:   &mockRefresh{},
		graph:     &mockGraph{friends: map[string]bool{}},
		cache:     testutil.NewMockCache(),
	}
	f.ac = NewApiController(&testutil.MockLogger{}, f.snapshots, f.analytics, &mockConsistency{}, f.refresh, f.graph, f.cache)
	return f
}

func compareReq(user, peer, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/compare/"+peer+"/overview"+query, nil)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	req.SetPathValue("peerId", peer)
	return req
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// --- compare endpoints ---

func TestCompareOverview_Unauthorized(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()

	f.ac.CompareOverview(rr, compareReq("", "p1", ""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, decodeEnvelope(t, rr).Success)
}

func TestCompareOverview_NotFriendsForbidden(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()

	f.ac.CompareOverview(rr, compareReq("me", "p1", ""))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCompareOverview_InvalidPlatformRejected(t *testing.T) {
	f := newFixture()
	f.graph.friends["me:p1"] = true
	rr := httptest.NewRecorder()

	f.ac.CompareOverview(rr, compareReq("me", "p1", "?platform=atcoder"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid platform", decodeEnvelope(t, rr).Error)
}

func TestCompareOverview_Success(t *testing.T) {
	f := newFixture()
	f.graph.friends["me:p1"] = true
	rr := httptest.NewRecorder()

	f.ac.CompareOverview(rr, compareReq("me", "p1", "?platform=codeforces"))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, f.analytics.aggregateCalls)
	assert.Equal(t, services.ModePerPeer, f.analytics.lastMode)
	assert.Equal(t, []string{"p1"}, f.analytics.lastPeers)
}

func TestCompareOverview_ServedFromCache(t *testing.T) {
	f := newFixture()
	f.graph.friends["me:p1"] = true

	rr := httptest.NewRecorder()
	f.ac.CompareOverview(rr, compareReq("me", "p1", ""))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	f.ac.CompareOverview(rr, compareReq("me", "p1", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.analytics.aggregateCalls, "second request must hit the cache")
}

func TestCompareTopics_Success(t *testing.T) {
	f := newFixture()
	f.graph.friends["me:p1"] = true
	req := httptest.NewRequest(http.MethodGet, "/compare/p1/topics", nil)
	req.Header.Set("X-User-ID", "me")
	req.SetPathValue("peerId", "p1")
	rr := httptest.NewRecorder()

	f.ac.CompareTopics(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeEnvelope(t, rr).Success)
}

func TestCompareConsistency_Success(t *testing.T) {
	f := newFixture()
	f.graph.friends["me:p1"] = true
	req := httptest.NewRequest(http.MethodGet, "/compare/p1/consistency?platform=leetcode", nil)
	req.Header.Set("X-User-ID", "me")
	req.SetPathValue("peerId", "p1")
	rr := httptest.NewRecorder()

	f.ac.CompareConsistency(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- analytics endpoints ---

func TestRatingHistory_SoloDefault(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/analytics/rating-history", nil)
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.RatingHistory(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, f.analytics.aggregateCalls)
}

func TestRatingHistory_AverageUsesTopPeers(t *testing.T) {
	f := newFixture()
	f.graph.peers = []string{"a", "b", "c", "d", "e"}
	req := httptest.NewRequest(http.MethodGet, "/analytics/rating-history?mode=average", nil)
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.RatingHistory(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, services.ModeAverage, f.analytics.lastMode)
	assert.Len(t, f.analytics.lastPeers, 4, "peer list is bounded")
}

func TestRatingHistory_InvalidMode(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/analytics/rating-history?mode=median", nil)
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.RatingHistory(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- write-side endpoints ---

func TestRefresh_NotCached(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/refresh?platform=codeforces", nil)
	req.Header.Set("X-User-ID", "me")

	rr := httptest.NewRecorder()
	f.ac.Refresh(rr, req)
	rr = httptest.NewRecorder()
	f.ac.Refresh(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, f.refresh.refreshed, 2)
	resp := decodeEnvelope(t, rr)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(7), data["written"])
}

func TestLinkHandle_Success(t *testing.T) {
	f := newFixture()
	f.refresh.ingestCount = 12
	body := `{"platform":"codeforces","handle":"tourist"}`
	req := httptest.NewRequest(http.MethodPost, "/handles", strings.NewReader(body))
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.LinkHandle(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, f.snapshots.linked, 1)
	assert.Equal(t, "tourist", f.snapshots.linked[0].Handle)
	data := decodeEnvelope(t, rr).Data.(map[string]any)
	assert.Equal(t, float64(12), data["written"])
}

func TestLinkHandle_InvalidPayload(t *testing.T) {
	f := newFixture()
	for _, body := range []string{`{`, `{"platform":"atcoder","handle":"x"}`, `{"platform":"codeforces","handle":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/handles", strings.NewReader(body))
		req.Header.Set("X-User-ID", "me")
		rr := httptest.NewRecorder()

		f.ac.LinkHandle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
	assert.Empty(t, f.snapshots.linked)
}

func TestUnlinkHandle_NotLinked(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodDelete, "/handles?platform=codeforces", nil)
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.UnlinkHandle(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnlinkHandle_Success(t *testing.T) {
	f := newFixture()
	f.snapshots.handleSet["me:leetcode"] = true
	req := httptest.NewRequest(http.MethodDelete, "/handles?platform=leetcode", nil)
	req.Header.Set("X-User-ID", "me")
	rr := httptest.NewRecorder()

	f.ac.UnlinkHandle(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []models.Platform{models.PlatformLeetcode}, f.snapshots.unlinked)
}

func TestWindowDays_Bounds(t *testing.T) {
	mk := func(q string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/analytics/consistency"+q, nil)
	}
	assert.Equal(t, 30, windowDays(mk(""), 30))
	assert.Equal(t, 90, windowDays(mk("?days=90"), 30))
	assert.Equal(t, minWindowDays, windowDays(mk("?days=2"), 30))
	assert.Equal(t, maxWindowDays, windowDays(mk("?days=9999"), 30))
	assert.Equal(t, 30, windowDays(mk("?days=abc"), 30))
}
