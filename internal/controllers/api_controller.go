package controllers

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"cpd/internal/models"
	"cpd/internal/providers"
	"cpd/internal/services"
	"cpd/internal/social"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	defaultWindowDays = 30
	historyWindowDays = 90
	minWindowDays     = 7
	maxWindowDays     = 365
	maxPeers          = 4
)

var errUnknownPlatform = errors.New("invalid platform")

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ApiController struct {
	logger      providers.Logger
	snapshots   services.SnapshotServiceInterface
	analytics   services.AnalyticsServiceInterface
	consistency services.ConsistencyServiceInterface
	refresh     services.RefreshServiceInterface
	graph       social.GraphInterface
	cache       providers.CacheProviderInterface
}

func NewApiController(
	logger providers.Logger,
	snapshots services.SnapshotServiceInterface,
	analytics services.AnalyticsServiceInterface,
	consistency services.ConsistencyServiceInterface,
	refresh services.RefreshServiceInterface,
	graph social.GraphInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:      logger,
		snapshots:   snapshots,
		analytics:   analytics,
		consistency: consistency,
		refresh:     refresh,
		graph:       graph,
		cache:       cache,
	}
}

// userID reads the authenticated user injected by the upstream
// gateway. Session handling itself lives outside this service.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// platformFilter validates the platform query parameter against the
// closed platform set. Empty and "overall" select the overall
// sentinel; anything else is a client error, never silently coerced.
func platformFilter(r *http.Request) (models.Platform, error) {
	raw := r.URL.Query().Get("platform")
	switch {
	case raw == "" || raw == string(models.ModeOverall):
		return models.ModeOverall, nil
	case models.IsKnownPlatform(models.Platform(raw)):
		return models.Platform(raw), nil
	default:
		return "", errUnknownPlatform
	}
}

func windowDays(r *http.Request, fallback int) int {
	days := cast.ToInt(r.URL.Query().Get("days"))
	if days == 0 {
		return fallback
	}
	if days < minWindowDays {
		return minWindowDays
	}
	if days > maxWindowDays {
		return maxWindowDays
	}
	return days
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) ok(w http.ResponseWriter, data any) {
	ac.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func (ac *ApiController) fail(w http.ResponseWriter, status int, msg string) {
	ac.writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	gson, err := json.Marshal(apiResponse{Success: true, Data: result})
	if err != nil {
		ac.fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// comparePrelude handles the shared auth/validation of the /compare
// endpoints. Returns ok=false after writing the error response.
func (ac *ApiController) comparePrelude(w http.ResponseWriter, r *http.Request) (user, peer string, filter models.Platform, ok bool) {
	user = userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return "", "", "", false
	}
	peer = r.PathValue("peerId")
	filter, err := platformFilter(r)
	if err != nil {
		ac.fail(w, http.StatusBadRequest, err.Error())
		return "", "", "", false
	}
	if !ac.graph.IsFriend(user, peer) {
		ac.fail(w, http.StatusForbidden, "not friends")
		return "", "", "", false
	}
	return user, peer, filter, true
}

func currentRatings(snapshots services.SnapshotServiceInterface, id string) map[models.Platform]int {
	out := make(map[models.Platform]int)
	for _, h := range snapshots.HandlesFor(id) {
		out[h.Platform] = h.CurrentRating
	}
	return out
}

func (ac *ApiController) CompareOverview(w http.ResponseWriter, r *http.Request) {
	user, peer, filter, ok := ac.comparePrelude(w, r)
	if !ok {
		return
	}
	days := windowDays(r, defaultWindowDays)

	cacheKey := fmt.Sprintf("cmp:ov:%s:%s:%s:%d", user, peer, filter, days)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		aligned := ac.analytics.Aggregate(user, []string{peer}, filter, services.ModePerPeer, days)
		return map[string]any{
			"series":       aligned,
			"user_ratings": currentRatings(ac.snapshots, user),
			"peer_ratings": currentRatings(ac.snapshots, peer),
		}, nil
	})
}

func (ac *ApiController) CompareTopics(w http.ResponseWriter, r *http.Request) {
	user, peer, filter, ok := ac.comparePrelude(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cmp:tp:%s:%s:%s", user, peer, filter)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return map[string]any{
			"user": ac.analytics.TopicBreakdown(user, filter),
			"peer": ac.analytics.TopicBreakdown(peer, filter),
		}, nil
	})
}

func (ac *ApiController) CompareConsistency(w http.ResponseWriter, r *http.Request) {
	user, peer, filter, ok := ac.comparePrelude(w, r)
	if !ok {
		return
	}
	days := windowDays(r, defaultWindowDays)

	cacheKey := fmt.Sprintf("cmp:cs:%s:%s:%s:%d", user, peer, filter, days)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		userActivity, userMetrics := ac.consistency.ComputeActivity(user, filter, days)
		peerActivity, peerMetrics := ac.consistency.ComputeActivity(peer, filter, days)
		return map[string]any{
			"user": map[string]any{"activity": userActivity, "metrics": userMetrics},
			"peer": map[string]any{"activity": peerActivity, "metrics": peerMetrics},
		}, nil
	})
}

func (ac *ApiController) RatingHistory(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := platformFilter(r)
	if err != nil {
		ac.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	days := windowDays(r, historyWindowDays)
	mode := r.URL.Query().Get("mode")

	switch mode {
	case "", "solo":
		cacheKey := fmt.Sprintf("rh:%s:%s:%d", user, filter, days)
		ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
			return ac.analytics.SeriesFor(user, filter, days), nil
		})
	case string(services.ModeAverage), string(services.ModePerPeer):
		cacheKey := fmt.Sprintf("rh:%s:%s:%s:%d", user, filter, mode, days)
		ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
			peers := ac.graph.TopPeersByRating(user, filter, maxPeers)
			return ac.analytics.Aggregate(user, peers, filter, services.AggregationMode(mode), days), nil
		})
	default:
		ac.fail(w, http.StatusBadRequest, "invalid mode")
	}
}

func (ac *ApiController) OwnConsistency(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := platformFilter(r)
	if err != nil {
		ac.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	days := windowDays(r, defaultWindowDays)

	cacheKey := fmt.Sprintf("cs:%s:%s:%d", user, filter, days)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		activity, metrics := ac.consistency.ComputeActivity(user, filter, days)
		return map[string]any{"activity": activity, "metrics": metrics}, nil
	})
}

// Refresh is the on-demand ingest path; it always runs, is never
// cached, and reports the written count even when zero.
func (ac *ApiController) Refresh(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := platformFilter(r)
	if err != nil {
		ac.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	written := ac.refresh.RefreshUser(r.Context(), user, filter)
	ac.ok(w, map[string]any{"written": written})
}

type linkHandleRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// LinkHandle links an external account and runs the initial backfill
// synchronously.
func (ac *ApiController) LinkHandle(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload linkHandleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.fail(w, http.StatusBadRequest, "bad request")
		return
	}
	p := models.Platform(payload.Platform)
	if !models.IsKnownPlatform(p) || payload.Handle == "" {
		ac.fail(w, http.StatusBadRequest, "invalid platform or handle")
		return
	}

	h := ac.snapshots.LinkHandle(user, p, payload.Handle)
	written, err := ac.refresh.Ingest(r.Context(), user, p, payload.Handle)
	if err != nil {
		ac.logger.Warnf(providers.TypeIngest, "initial backfill for %s/%s wrote %d: %s", p, payload.Handle, written, err)
	}

	ac.writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: map[string]any{
		"handle":  h,
		"written": written,
	}})
}

// UnlinkHandle removes a linked account and cascades deletion of its
// snapshots.
func (ac *ApiController) UnlinkHandle(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		ac.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	raw := r.URL.Query().Get("platform")
	p := models.Platform(raw)
	if !models.IsKnownPlatform(p) {
		ac.fail(w, http.StatusBadRequest, errUnknownPlatform.Error())
		return
	}
	if _, ok := ac.snapshots.Handle(user, p); !ok {
		ac.fail(w, http.StatusNotFound, "handle not linked")
		return
	}

	ac.snapshots.UnlinkHandle(user, p)
	ac.ok(w, map[string]any{"unlinked": p})
}
