// Package zammad implements the authenticated, rate-limited HTTP client for
// the Zammad REST API, plus typed accessors for the knowledge-base, tag,
// and attachment endpoints the exporter consumes.
package zammad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-kb-export/internal/logging"
)

const (
	apiPrefix      = "/api/v1"
	defaultPerPage = 500

	defaultDelay    = 100 * time.Millisecond
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
)

// Config configures the API client.
type Config struct {
	// BaseURL is the Zammad instance root, e.g. https://support.example.com.
	BaseURL string
	// Token is the API access token sent on every request.
	Token string
	// RequestDelay is the minimum spacing enforced between successive
	// requests, regardless of which component issued them.
	RequestDelay time.Duration
	// MaxAttempts bounds retries for transient failures (default 3).
	MaxAttempts int
	// RetryBackoff is the initial retry delay, doubled per attempt.
	RetryBackoff time.Duration
	// HTTPClient overrides the underlying transport (default http.DefaultClient).
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client is a serialized gate in front of the Zammad API: every outbound
// call waits on the shared limiter, so the request rate is bounded no
// matter how many logical fetches a feature needs.
type Client struct {
	baseURL     string
	token       string
	httpc       *http.Client
	gate        *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	logger      logging.Logger
}

// NewClient validates the configuration and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrTokenRequired
	}

	delay := cfg.RequestDelay
	if delay < 0 {
		delay = 0
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Client{
		baseURL:     base,
		token:       cfg.Token,
		httpc:       httpc,
		gate:        rate.NewLimiter(limit, 1),
		maxAttempts: attempts,
		backoff:     backoff,
		logger:      logger,
	}, nil
}

// BaseURL returns the configured instance root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an authenticated GET against /api/v1{path} and returns the
// response body and Content-Type. Transient failures (network errors, 5xx)
// are retried with doubling backoff; 401/403/404 are terminal and classify
// per errors.go.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, "", fmt.Errorf("zammad: build request %s: %w", path, err)
		}
		req.Header.Set("Authorization", "Token token="+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			lastErr = err
			c.logger.Warn("request failed, retrying", "path", path, "attempt", attempt, "error", err)
		} else {
			data, readErr := io.ReadAll(resp.Body)
			contentType := resp.Header.Get("Content-Type")
			resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = readErr
				c.logger.Warn("response read failed, retrying", "path", path, "attempt", attempt, "error", readErr)
			case resp.StatusCode >= http.StatusInternalServerError:
				lastErr = &StatusError{Path: path, Status: resp.StatusCode}
				c.logger.Warn("server error, retrying", "path", path, "attempt", attempt, "status", resp.StatusCode)
			case resp.StatusCode >= http.StatusBadRequest:
				return nil, "", classifyStatus(path, resp.StatusCode)
			default:
				return data, contentType, nil
			}
		}

		if attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, "", goerrors.Wrap(lastErr, goerrors.CategoryExternal,
		fmt.Sprintf("zammad: %s failed after %d attempts", path, c.maxAttempts)).
		WithTextCode("RETRIES_EXHAUSTED")
}

// GetJSON performs Get and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, _, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("zammad: decode %s: %w", path, err)
	}
	return nil
}

// FetchPage retrieves one page of a paginated list endpoint. hasMore is
// false when the page is empty or shorter than the page size, which is how
// Zammad signals the last page. Upstream item order is preserved.
func (c *Client) FetchPage(ctx context.Context, path string, page int) ([]json.RawMessage, bool, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(defaultPerPage))
	query.Set("expand", "true")

	var items []json.RawMessage
	if err := c.GetJSON(ctx, path, query, &items); err != nil {
		return nil, false, err
	}
	return items, len(items) == defaultPerPage, nil
}

// FetchAllPages follows a paginated list endpoint until exhausted.
func (c *Client) FetchAllPages(ctx context.Context, path string) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for page := 1; ; page++ {
		items, hasMore, err := c.FetchPage(ctx, path, page)
		if err != nil {
			return nil, err
		}
		records = append(records, items...)
		if !hasMore {
			return records, nil
		}
	}
}

// FetchBytes retrieves raw authenticated attachment bytes plus the
// Content-Type header. The attachment's Content-Disposition filename is
// RFC 6266 encoded and deliberately unused; callers derive filenames from
// the content type instead.
func (c *Client) FetchBytes(ctx context.Context, attachmentID int) ([]byte, string, error) {
	return c.Get(ctx, "/attachments/"+strconv.Itoa(attachmentID), nil)
}

// KnowledgeBase fetches the knowledge-base record for id.
func (c *Client) KnowledgeBase(ctx context.Context, id int) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := c.GetJSON(ctx, "/knowledge_bases/"+strconv.Itoa(id), nil, &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// ListCategories fetches the full flat category list for the knowledge base.
func (c *Client) ListCategories(ctx context.Context, kbID int) ([]Category, error) {
	path := fmt.Sprintf("/knowledge_bases/%d/categories", kbID)
	raw, err := c.FetchAllPages(ctx, path)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(raw))
	for _, item := range raw {
		var category Category
		if err := json.Unmarshal(item, &category); err != nil {
			return nil, fmt.Errorf("zammad: decode category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// Answer fetches the step-1 metadata response for an answer. The HTML body
// is not included; use AnswerContents for that.
func (c *Client) Answer(ctx context.Context, kbID, answerID int) (*AnswerEnvelope, error) {
	var envelope AnswerEnvelope
	path := fmt.Sprintf("/knowledge_bases/%d/answers/%d", kbID, answerID)
	if err := c.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// AnswerContents fetches the step-2 response carrying the HTML body for the
// given translation. Zammad withholds bodies from metadata responses; the
// ?include_contents parameter is required to get them.
func (c *Client) AnswerContents(ctx context.Context, kbID, answerID, translationID int) (*AnswerEnvelope, error) {
	query := url.Values{}
	query.Set("include_contents", strconv.Itoa(translationID))

	var envelope AnswerEnvelope
	path := fmt.Sprintf("/knowledge_bases/%d/answers/%d", kbID, answerID)
	if err := c.GetJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// Tags fetches the tag list for an answer from the polymorphic tag
// endpoint. The tags[] field embedded on answer objects is permanently
// empty in the API; this separate endpoint is the only source.
func (c *Client) Tags(ctx context.Context, answerID int) ([]string, error) {
	query := url.Values{}
	query.Set("object", "KnowledgeBaseAnswer")
	query.Set("o_id", strconv.Itoa(answerID))

	var payload struct {
		Tags []string `json:"tags"`
	}
	if err := c.GetJSON(ctx, "/tags", query, &payload); err != nil {
		return nil, err
	}
	return payload.Tags, nil
}
