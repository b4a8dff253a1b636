package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/cppla/codestreak/utils"
)

// FallbackQuotes are served whenever the quote API cannot be reached.
var FallbackQuotes = []string{
	"The way to get started is to quit talking and begin doing. - Walt Disney",
	"Don't let yesterday take up too much of today. - Will Rogers",
	"You learn more from failure than from success. - Unknown",
	"If you are working on something exciting that you really care about, you don't have to be pushed. The vision pulls you. - Steve Jobs",
	"The future belongs to those who learn more skills and combine them in creative ways. - Robert Greene",
}

// QuoteSource yields a motivational quote. Implementations never fail.
type QuoteSource interface {
	Random(ctx context.Context) string
}

// QuoteClient fetches quotes from a quotable-compatible API.
type QuoteClient struct {
	BaseURL    string
	HTTPClient *http.Client
	// Pick returns an index in [0, n); defaults to math/rand.
	Pick func(n int) int
}

// NewQuoteClient creates a client with a short timeout.
func NewQuoteClient(baseURL string) *QuoteClient {
	return &QuoteClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Pick:       rand.IntN,
	}
}

type quoteResponse struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Random returns "<content> - <author>", or a fallback quote on any failure.
func (q *QuoteClient) Random(ctx context.Context) string {
	quote, err := q.fetch(ctx)
	if err != nil {
		utils.Sugar.Debugf("quote api unavailable, using fallback: %v", err)
		return q.fallback()
	}
	return quote
}

func (q *QuoteClient) fetch(ctx context.Context) (string, error) {
	url := q.BaseURL + "/random?tags=motivational,inspirational,success"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	client := q.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("quote api returned %d", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode quote: %w", err)
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return "", fmt.Errorf("quote api returned empty content")
	}
	author := strings.TrimSpace(body.Author)
	if author == "" {
		author = "Unknown"
	}
	return content + " - " + author, nil
}

func (q *QuoteClient) fallback() string {
	pick := q.Pick
	if pick == nil {
		pick = rand.IntN
	}
	i := pick(len(FallbackQuotes))
	if i < 0 || i >= len(FallbackQuotes) {
		i = 0
	}
	return FallbackQuotes[i]
}
