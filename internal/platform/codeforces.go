package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"cpd/internal/models"
	"cpd/internal/providers"
	"cpd/internal/structures"
)

const codeforcesDefaultURL = "https://codeforces.com/api"

// CodeforcesClient is the "full history" platform kind: it exposes a
// complete rating-change log per handle.
type CodeforcesClient struct {
	baseURL string
	http    *http.Client
	logger  providers.Logger
}

func NewCodeforcesClient(conf *structures.Config, logger providers.Logger) *CodeforcesClient {
	baseURL := conf.Platforms.Codeforces.BaseURL
	if baseURL == "" {
		baseURL = codeforcesDefaultURL
	}
	return &CodeforcesClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type cfEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

func (c *CodeforcesClient) call(ctx context.Context, method string, params url.Values, result any) error {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env cfEnvelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("codeforces %s: %w", method, err)
	}
	if env.Status != "OK" {
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("codeforces %s: %s", method, env.Comment)
	}
	return json.Unmarshal(env.Result, result)
}

func (c *CodeforcesClient) GetCurrent(ctx context.Context, handle string) (*CurrentStats, error) {
	var users []struct {
		Rating int `json:"rating"`
	}
	params := url.Values{"handles": {handle}}
	if err := c.call(ctx, "user.info", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}

	solved, topics, err := c.solvedAndTopics(ctx, handle)
	if err != nil {
		// Rating is still usable; submissions are best-effort.
		c.logger.Warnf(providers.TypeIngest, "codeforces user.status failed for %s: %s", handle, err)
	}

	return &CurrentStats{
		Rating:         users[0].Rating,
		SolvedCount:    solved,
		TopicBreakdown: topics,
	}, nil
}

func (c *CodeforcesClient) GetHistory(ctx context.Context, handle string) ([]RatingChange, error) {
	var changes []struct {
		UpdateTime int64 `json:"ratingUpdateTimeSeconds"`
		NewRating  int   `json:"newRating"`
	}
	params := url.Values{"handle": {handle}}
	if err := c.call(ctx, "user.rating", params, &changes); err != nil {
		return nil, err
	}

	out := make([]RatingChange, 0, len(changes))
	for _, ch := range changes {
		out = append(out, RatingChange{
			Timestamp: time.Unix(ch.UpdateTime, 0).UTC(),
			Rating:    ch.NewRating,
		})
	}
	return out, nil
}

func (c *CodeforcesClient) GetDailySubmissionCounts(ctx context.Context, handle string, days int) (map[string]int, error) {
	subs, err := c.submissions(ctx, handle)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	counts := make(map[string]int)
	for _, sub := range subs {
		ts := time.Unix(sub.CreationTime, 0).UTC()
		if ts.Before(cutoff) {
			continue
		}
		counts[ts.Format(models.DateKey)]++
	}
	return counts, nil
}

type cfSubmission struct {
	CreationTime int64  `json:"creationTimeSeconds"`
	Verdict      string `json:"verdict"`
	Problem      struct {
		ContestID int      `json:"contestId"`
		Index     string   `json:"index"`
		Tags      []string `json:"tags"`
	} `json:"problem"`
}

func (c *CodeforcesClient) submissions(ctx context.Context, handle string) ([]cfSubmission, error) {
	var subs []cfSubmission
	params := url.Values{"handle": {handle}}
	if err := c.call(ctx, "user.status", params, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// solvedAndTopics derives the distinct solved-problem count and the
// per-tag cumulative counts from the submission log.
func (c *CodeforcesClient) solvedAndTopics(ctx context.Context, handle string) (int, map[string]int, error) {
	subs, err := c.submissions(ctx, handle)
	if err != nil {
		return 0, nil, err
	}

	seen := make(map[string]struct{})
	topics := make(map[string]int)
	for _, sub := range subs {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d-%s", sub.Problem.ContestID, sub.Problem.Index)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		for _, tag := range sub.Problem.Tags {
			topics[tag]++
		}
	}
	return len(seen), topics, nil
}
