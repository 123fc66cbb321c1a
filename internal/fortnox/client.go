// Package fortnox is a typed client for the article register of the Fortnox
// accounting API.
package fortnox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBaseURL is the Fortnox REST API root.
const DefaultBaseURL = "https://api.fortnox.se/3"

// Credentials authenticate a single API call.
type Credentials struct {
	AccessToken  string
	ClientSecret string
}

// CredentialSource supplies credentials at the start of every request. The
// client holds no credential state of its own, so a token refreshed by an
// external scheduler is picked up on the next call without a restart.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a CredentialSource returning fixed values.
type StaticCredentials Credentials

// Compile-time check to ensure StaticCredentials implements CredentialSource
var _ CredentialSource = StaticCredentials{}

// Credentials implements CredentialSource.
func (s StaticCredentials) Credentials(ctx context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// APIError is returned when Fortnox responds with a non-2xx status. It carries
// the response body when one was available; callers own user-facing messaging.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fortnox api: %s responded %s", e.URL, e.Status)
	}
	return fmt.Sprintf("fortnox api: %s responded %s: %s", e.URL, e.Status, e.Body)
}

// Client calls the Fortnox article endpoints.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client. If not provided, a client with a
// 30 second timeout is used.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client. No I/O is performed; credentials are read from the
// source per request.
func New(creds CredentialSource, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, fmt.Errorf("missing credential source")
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return c, nil
}

// GetArticles retrieves articles, optionally narrowed by Fortnox query filters
// (articlenumber, description, ...). A response without an Articles key yields
// an empty list.
func (c *Client) GetArticles(ctx context.Context, filter url.Values) ([]Article, error) {
	var payload struct {
		Articles []Article `json:"Articles"`
	}
	if err := c.get(ctx, "/articles", filter, &payload); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "retrieved articles", "count", len(payload.Articles))
	return payload.Articles, nil
}

// GetArticleByNumber retrieves a single article. A remote not-found is not an
// error: the result is (nil, nil).
func (c *Client) GetArticleByNumber(ctx context.Context, articleNumber string) (*Article, error) {
	var payload struct {
		Article *Article `json:"Article"`
	}
	err := c.get(ctx, "/articles/"+url.PathEscape(articleNumber), nil, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	return payload.Article, nil
}

// GetArticlesInStock returns the articles whose stock quantity strictly
// exceeds minimum, preserving the order the API returned them in. The full
// article list is fetched and filtered client-side on every call; the article
// register is small enough that pagination and caching are not worth carrying.
func (c *Client) GetArticlesInStock(ctx context.Context, minimum float64) ([]Article, error) {
	articles, err := c.GetArticles(ctx, nil)
	if err != nil {
		return nil, err
	}

	inStock := make([]Article, 0, len(articles))
	for _, article := range articles {
		if article.QuantityInStock > minimum {
			inStock = append(inStock, article)
		}
	}

	slog.InfoContext(ctx, "filtered articles in stock", "minimum", minimum, "count", len(inStock))
	return inStock, nil
}

// Ping verifies connectivity and credentials with a minimal read-only call
// (GET /articles?limit=1).
func (c *Client) Ping(ctx context.Context) error {
	filter := url.Values{}
	filter.Set("limit", "1")
	_, err := c.GetArticles(ctx, filter)
	return err
}

// get performs one authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Client-Secret", creds.ClientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        u,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", u, err)
	}
	return nil
}
