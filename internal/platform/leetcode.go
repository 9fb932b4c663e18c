package platform

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"cpd/internal/providers"
	"cpd/internal/structures"
)

const leetcodeDefaultURL = "https://leetcode.com/graphql"

// LeetcodeClient is the "point-in-time only" platform kind: no rating
// history API, only current state.
type LeetcodeClient struct {
	baseURL string
	http    *http.Client
	logger  providers.Logger
}

func NewLeetcodeClient(conf *structures.Config, logger providers.Logger) *LeetcodeClient {
	baseURL := conf.Platforms.Leetcode.BaseURL
	if baseURL == "" {
		baseURL = leetcodeDefaultURL
	}
	return &LeetcodeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

const leetcodeQuery = `
query userStats($username: String!) {
  matchedUser(username: $username) {
    submitStatsGlobal { acSubmissionNum { difficulty count } }
    tagProblemCounts {
      advanced { tagName problemsSolved }
      intermediate { tagName problemsSolved }
      fundamental { tagName problemsSolved }
    }
  }
  userContestRanking(username: $username) { rating }
}`

type lcTagCount struct {
	TagName        string `json:"tagName"`
	ProblemsSolved int    `json:"problemsSolved"`
}

type lcResponse struct {
	Data struct {
		MatchedUser *struct {
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
			TagProblemCounts struct {
				Advanced     []lcTagCount `json:"advanced"`
				Intermediate []lcTagCount `json:"intermediate"`
				Fundamental  []lcTagCount `json:"fundamental"`
			} `json:"tagProblemCounts"`
		} `json:"matchedUser"`
		UserContestRanking *struct {
			Rating float64 `json:"rating"`
		} `json:"userContestRanking"`
	} `json:"data"`
}

func (c *LeetcodeClient) GetCurrent(ctx context.Context, handle string) (*CurrentStats, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     leetcodeQuery,
		"variables": map[string]string{"username": handle},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leetcode graphql: status %d", resp.StatusCode)
	}

	var body lcResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("leetcode graphql: %w", err)
	}
	if body.Data.MatchedUser == nil {
		return nil, ErrNotFound
	}

	solved := 0
	for _, bucket := range body.Data.MatchedUser.SubmitStatsGlobal.AcSubmissionNum {
		if bucket.Difficulty == "All" {
			solved = bucket.Count
		}
	}

	topics := make(map[string]int)
	tagGroups := [][]lcTagCount{
		body.Data.MatchedUser.TagProblemCounts.Fundamental,
		body.Data.MatchedUser.TagProblemCounts.Intermediate,
		body.Data.MatchedUser.TagProblemCounts.Advanced,
	}
	for _, group := range tagGroups {
		for _, tag := range group {
			topics[tag.TagName] += tag.ProblemsSolved
		}
	}

	rating := 0
	if body.Data.UserContestRanking != nil {
		rating = int(body.Data.UserContestRanking.Rating)
	}

	return &CurrentStats{
		Rating:         rating,
		SolvedCount:    solved,
		TopicBreakdown: topics,
	}, nil
}

func (c *LeetcodeClient) GetHistory(_ context.Context, _ string) ([]RatingChange, error) {
	return nil, ErrHistoryUnsupported
}

func (c *LeetcodeClient) GetDailySubmissionCounts(_ context.Context, _ string, _ int) (map[string]int, error) {
	return nil, ErrHistoryUnsupported
}
