package oaipmh

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"harvestbot/types"
)

// Default pagination policy. The page delay is a fixed-rate throttle so we
// do not hammer third-party endpoints; the page cap is a safety valve
// against repositories that never stop returning resumption tokens.
const (
	DefaultPageDelay   = 1 * time.Second
	DefaultPageCap     = 1000
	DefaultHTTPTimeout = 30 * time.Second
)

// PageHandler receives each fetched ListRecords page. It is invoked
// synchronously inside the pagination loop; returning an error fails the
// whole ListRecords call. Pages already handed over are not rolled back.
type PageHandler func(rawXML string, pageNumber, recordsInPage, totalRecordsProcessed int) error

// Client drives the two OAI-PMH verbs over HTTP and owns the pagination
// state machine. HTTP client and logger are injected so tests and callers
// control transport and output; there is no package-level state.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
	pageDelay  time.Duration
	pageCap    int
}

// ClientConfig overrides the client defaults. Zero values keep defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	Logger     *log.Logger
	PageDelay  time.Duration
	PageCap    int
}

// NewClient creates a harvest client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		pageDelay:  cfg.PageDelay,
		pageCap:    cfg.PageCap,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.pageDelay <= 0 {
		c.pageDelay = DefaultPageDelay
	}
	if c.pageCap <= 0 {
		c.pageCap = DefaultPageCap
	}
	return c
}

// ValidateBaseURL checks that raw is a non-empty absolute http(s) URL.
// Violations fail before any network call is made.
func ValidateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Msg: "base URL is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid base URL %q: %v", raw, err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Msg: fmt.Sprintf("base URL %q must be an absolute http(s) URL", raw)}
	}
	return nil
}

// requestTarget derives the request base from the caller-supplied URL:
// trailing slashes and a trailing /oai segment are stripped, so the same
// repository configured with or without them produces identical requests.
func requestTarget(baseURL string) string {
	s := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return strings.TrimSuffix(s, "/oai")
}

// BuildIdentifyURL returns the Identify request URL for a base URL.
func BuildIdentifyURL(baseURL string) string {
	return requestTarget(baseURL) + "?verb=Identify"
}

// buildListRecordsURL returns the ListRecords request URL. The first page
// selects the oai_dc metadata prefix; resumed pages carry only the token,
// since OAI-PMH forbids combining it with other arguments.
func buildListRecordsURL(baseURL, token string) string {
	if token == "" {
		return requestTarget(baseURL) + "?verb=ListRecords&metadataPrefix=oai_dc"
	}
	return requestTarget(baseURL) + "?verb=ListRecords&resumptionToken=" + url.QueryEscape(token)
}

// Identify fetches the repository's Identify response and returns the raw
// XML body. Errors wrap the caller-supplied URL, not the derived request
// target, so messages stay stable regardless of request construction.
func (c *Client) Identify(ctx context.Context, baseURL string) (string, error) {
	if err := ValidateBaseURL(baseURL); err != nil {
		return "", err
	}
	body, err := c.fetch(ctx, BuildIdentifyURL(baseURL))
	if err != nil {
		return "", fmt.Errorf("identify %s: %w", baseURL, err)
	}
	return body, nil
}

// ListRecords pages through the repository's ListRecords response,
// invoking onPage once per fetched page. The loop is strictly sequential:
// resumption tokens are only valid in request order, so there is exactly
// one round trip outstanding at a time.
//
// Failure semantics: any fetch, parse or handler error fails the whole
// call, and the failed result carries zeroed counters even when earlier
// pages were already handed to onPage. Hitting the page cap is a policy
// truncation and reports success.
func (c *Client) ListRecords(ctx context.Context, baseURL string, onPage PageHandler) types.HarvestResult {
	if err := ValidateBaseURL(baseURL); err != nil {
		return failedResult(Classify(err), err)
	}

	token := ""
	pageCount := 0
	totalRecords := 0

	for {
		pageCount++
		target := buildListRecordsURL(baseURL, token)

		body, err := c.fetch(ctx, target)
		if err != nil {
			err = fmt.Errorf("list records %s page %d: %w", baseURL, pageCount, err)
			return failedResult(Classify(err), err)
		}

		resp, err := Parse([]byte(body))
		if err != nil {
			err = fmt.Errorf("list records %s page %d: %w", baseURL, pageCount, err)
			return failedResult(Classify(err), err)
		}

		// A response without a ListRecords element (e.g. a noRecordsMatch
		// error response) counts as an empty final page, not a failure.
		recordsInPage := 0
		nextToken := ""
		if resp.ListRecords != nil {
			recordsInPage = len(resp.ListRecords.Records)
			nextToken = resp.ListRecords.Token()
		}
		totalRecords += recordsInPage

		if err := onPage(body, pageCount, recordsInPage, totalRecords); err != nil {
			return failedResult(CodeProcessingError, err)
		}

		if nextToken == "" {
			break
		}
		if pageCount >= c.pageCap {
			c.logger.Printf("page cap %d reached for %s with resumption token still present; truncating harvest", c.pageCap, baseURL)
			break
		}

		time.Sleep(c.pageDelay)
		token = nextToken
	}

	return types.HarvestResult{
		Success:               true,
		PageCount:             pageCount,
		TotalRecordsProcessed: totalRecords,
	}
}

// fetch issues one GET and returns the body. A non-200 status or an empty
// body is an error; 4xx and 5xx come back as HTTPStatusError rather than
// transport failures so the classifier sees them uniformly.
func (c *Client) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, URL: target}
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", &ProtocolError{Code: CodeEmptyResponse, Msg: fmt.Sprintf("empty response body from %s", target)}
	}
	return string(raw), nil
}

func failedResult(code string, err error) types.HarvestResult {
	return types.HarvestResult{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
	}
}
