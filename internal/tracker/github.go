// Package tracker implements the triage.Searcher interface against
// GitHub's issue search endpoint.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hochfrequenz/agenda/internal/triage"
)

const defaultBaseURL = "https://api.github.com"

// Client is a GitHub search client with a bounded request timeout.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a Client. baseURL may be empty for api.github.com; token
// may be empty for unauthenticated (rate-limited) access.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type searchResult struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Number        int       `json:"number"`
		Title         string    `json:"title"`
		HTMLURL       string    `json:"html_url"`
		UpdatedAt     time.Time `json:"updated_at"`
		RepositoryURL string    `json:"repository_url"`
	} `json:"items"`
}

// Search runs one search query, asking the tracker for the stalest
// matches first so client-side truncation keeps the right items.
func (c *Client) Search(ctx context.Context, query string, limit int) (triage.IssueBatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "updated")
	params.Set("order", "asc")
	params.Set("per_page", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/issues?"+params.Encode(), nil)
	if err != nil {
		return triage.IssueBatch{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return triage.IssueBatch{}, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return triage.IssueBatch{}, fmt.Errorf("search returned %d for %q", resp.StatusCode, query)
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return triage.IssueBatch{}, fmt.Errorf("decode search response: %w", err)
	}

	batch := triage.IssueBatch{Total: result.TotalCount}
	for _, it := range result.Items {
		batch.Items = append(batch.Items, triage.IssueRef{
			Repo:    repoName(it.RepositoryURL),
			Number:  it.Number,
			Title:   it.Title,
			URL:     it.HTMLURL,
			Updated: it.UpdatedAt,
		})
	}
	return batch, nil
}

// repoName extracts the repository name from an API repository URL,
// e.g. https://api.github.com/repos/acme/widgets -> widgets.
func repoName(repositoryURL string) string {
	idx := strings.LastIndex(repositoryURL, "/")
	if idx < 0 {
		return repositoryURL
	}
	return repositoryURL[idx+1:]
}
