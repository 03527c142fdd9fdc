// Package exonym looks up foreign-language names of places through a MediaWiki
// interlanguage-links endpoint.
package exonym

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the English Wikipedia API.
const DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

// ErrNotFound means the service answered but knows no exonym for the name.
var ErrNotFound = errors.New("exonym not found")

// Cache is the storage the client consults before going to the network.
type Cache interface {
	Get(ctx context.Context, name, language string) (string, bool)
	Set(ctx context.Context, name, language, exonym string) error
}

// Client resolves exonyms with retries and an optional cache.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      Cache
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a lookup client. cache may be nil.
func NewClient(endpoint string, timeout time.Duration, cache Cache) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:      cache,
		maxRetries: 3,
		backoff:    2 * time.Second,
	}
}

// --- MediaWiki API response types (formatversion=2) ---

type queryResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error,omitempty"`
}

type page struct {
	Title     string     `json:"title"`
	Missing   bool       `json:"missing,omitempty"`
	LangLinks []langLink `json:"langlinks"`
}

type langLink struct {
	Lang  string `json:"lang"`
	Title string `json:"title"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// GetExonym returns the name of place in language, or an error.
func (c *Client) GetExonym(ctx context.Context, place, language string) (string, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(ctx, place, language); ok {
			return v, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.backoff
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Str("place", place).Msg("Retrying exonym lookup")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.doRequest(ctx, place, language)
		if err == nil {
			if c.cache != nil {
				if err := c.cache.Set(ctx, place, language, result); err != nil {
					log.Warn().Err(err).Str("place", place).Msg("Failed to cache exonym")
				}
			}
			return result, nil
		}
		lastErr = err

		// Don't retry on cancellation or on a definitive answer.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, ErrNotFound) || !isRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("exonym lookup failed after %d retries: %w", c.maxRetries, lastErr)
}

// TryGetExonym is GetExonym that never fails: any error yields "".
func (c *Client) TryGetExonym(ctx context.Context, place, language string) string {
	v, err := c.GetExonym(ctx, place, language)
	if err != nil {
		log.Debug().Err(err).Str("place", place).Str("lang", language).Msg("Exonym lookup gave no result")
		return ""
	}
	return v
}

type retryableError struct {
	err error
}

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var r retryableError
	return errors.As(err, &r)
}

func (c *Client) doRequest(ctx context.Context, place, language string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("prop", "langlinks")
	q.Set("redirects", "1")
	q.Set("titles", place)
	q.Set("lllang", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retryableError{fmt.Errorf("API call: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retryableError{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", retryableError{fmt.Errorf("retryable error (status %d): %s", resp.StatusCode, string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp queryResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error [%s]: %s", apiResp.Error.Code, apiResp.Error.Info)
	}

	for _, p := range apiResp.Query.Pages {
		for _, ll := range p.LangLinks {
			if ll.Lang == language && strings.TrimSpace(ll.Title) != "" {
				return strings.TrimSpace(ll.Title), nil
			}
		}
	}

	return "", ErrNotFound
}
