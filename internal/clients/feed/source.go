package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/pkg/httpx"
	"github.com/ordalabs/orda-backend/internal/rag"
)

// Source pulls the filtered issue batch from the external collector service.
// The collector owns crawling and stock-relevance filtering; this side only
// consumes its JSON feed.
type Source struct {
	log     *logger.Logger
	httpc   *http.Client
	feedURL string
	retries int
}

func NewSource(log *logger.Logger) (*Source, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	feedURL := strings.TrimSpace(os.Getenv("ISSUE_FEED_URL"))
	if feedURL == "" {
		return nil, fmt.Errorf("missing ISSUE_FEED_URL")
	}
	return &Source{
		log:     log.With("client", "IssueFeed"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		feedURL: feedURL,
		retries: 3,
	}, nil
}

type feedIssue struct {
	IssueNumber         int     `json:"issue_number"`
	Title               string  `json:"title"`
	Content             string  `json:"content"`
	Category            string  `json:"category"`
	ExtractedAt         string  `json:"extracted_at"`
	StockRelevanceScore float64 `json:"stock_relevance_score"`
	Rank                int     `json:"rank"`
}

type feedResponse struct {
	Issues []feedIssue `json:"issues"`
}

// FetchFiltered retrieves the current filtered batch. Transient upstream
// failures are retried with backoff before giving up.
func (s *Source) FetchFiltered(ctx context.Context) ([]rag.IssueInput, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= s.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		issues, resp, err := s.fetchOnce(ctx)
		if err == nil {
			return issues, nil
		}
		if !httpx.IsRetryableError(err) {
			return nil, err
		}
		if attempt == s.retries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		s.log.Warn("Issue feed fetch retrying",
			"attempt", attempt+1,
			"max_retries", s.retries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func (s *Source) fetchOnce(ctx context.Context) ([]rag.IssueInput, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &feedHTTPError{status: resp.StatusCode, body: string(body)}
	}

	var decoded feedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Some collector versions serve a bare array.
		var bare []feedIssue
		if err2 := json.Unmarshal(body, &bare); err2 != nil {
			return nil, resp, fmt.Errorf("decode issue feed: %w", err)
		}
		decoded.Issues = bare
	}

	inputs := make([]rag.IssueInput, 0, len(decoded.Issues))
	for _, fi := range decoded.Issues {
		if strings.TrimSpace(fi.Title) == "" && strings.TrimSpace(fi.Content) == "" {
			continue
		}
		extractedAt := time.Now()
		if fi.ExtractedAt != "" {
			if ts, err := time.Parse(time.RFC3339, fi.ExtractedAt); err == nil {
				extractedAt = ts
			}
		}
		inputs = append(inputs, rag.IssueInput{
			IssueNumber:         fi.IssueNumber,
			Title:               strings.TrimSpace(fi.Title),
			Content:             strings.TrimSpace(fi.Content),
			Category:            strings.TrimSpace(fi.Category),
			ExtractedAt:         extractedAt,
			StockRelevanceScore: fi.StockRelevanceScore,
			Rank:                fi.Rank,
		})
	}
	s.log.Info("Issue feed fetched", "issues", len(inputs))
	return inputs, resp, nil
}

type feedHTTPError struct {
	status int
	body   string
}

func (e *feedHTTPError) Error() string {
	return fmt.Sprintf("issue feed http %d: %s", e.status, e.body)
}

func (e *feedHTTPError) HTTPStatusCode() int { return e.status }
