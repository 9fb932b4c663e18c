package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpd/internal/structures"
	"cpd/internal/testutil"
)

func newLeetcodeClient(baseURL string) *LeetcodeClient {
	conf := &structures.Config{}
	conf.Platforms.Leetcode.BaseURL = baseURL
	return NewLeetcodeClient(conf, &testutil.MockLogger{})
}

func TestLeetcodeClient_GetCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{
			"matchedUser":{
				"submitStatsGlobal":{"acSubmissionNum":[
					{"difficulty":"All","count":312},
					{"difficulty":"Easy","count":140}
				]},
				"tagProblemCounts":{
					"advanced":[{"tagName":"dynamic-programming","problemsSolved":40}],
					"intermediate":[{"tagName":"hash-table","problemsSolved":55}],
					"fundamental":[{"tagName":"array","problemsSolved":90},{"tagName":"dynamic-programming","problemsSolved":5}]
				}
			},
			"userContestRanking":{"rating":1912.44}
		}}`)
	}))
	defer srv.Close()

	c := newLeetcodeClient(srv.URL)
	stats, err := c.GetCurrent(context.Background(), "alice_lc")
	require.NoError(t, err)

	assert.Equal(t, 1912, stats.Rating)
	assert.Equal(t, 312, stats.SolvedCount)
	assert.Equal(t, map[string]int{
		"array":               90,
		"hash-table":          55,
		"dynamic-programming": 45,
	}, stats.TopicBreakdown)
}

func TestLeetcodeClient_GetCurrent_NoContestRanking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{
			"matchedUser":{"submitStatsGlobal":{"acSubmissionNum":[{"difficulty":"All","count":10}]}},
			"userContestRanking":null
		}}`)
	}))
	defer srv.Close()

	c := newLeetcodeClient(srv.URL)
	stats, err := c.GetCurrent(context.Background(), "alice_lc")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Rating)
	assert.Equal(t, 10, stats.SolvedCount)
}

func TestLeetcodeClient_GetCurrent_UnknownHandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"matchedUser":null}}`)
	}))
	defer srv.Close()

	c := newLeetcodeClient(srv.URL)
	_, err := c.GetCurrent(context.Background(), "no_such_user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeetcodeClient_HistoryUnsupported(t *testing.T) {
	c := newLeetcodeClient("http://unused")

	_, err := c.GetHistory(context.Background(), "alice_lc")
	assert.ErrorIs(t, err, ErrHistoryUnsupported)

	_, err = c.GetDailySubmissionCounts(context.Background(), "alice_lc", 30)
	assert.ErrorIs(t, err, ErrHistoryUnsupported)
}
