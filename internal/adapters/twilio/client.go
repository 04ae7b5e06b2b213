package twilio

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

	"github.com/bnema/msgdash/internal/domain"
	"github.com/bnema/msgdash/internal/ports"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.twilio.com"
	DefaultPageSize = 1000

	apiVersion      = "2010-04-01"
	queryTimeLayout = "2006-01-02T15:04:05Z"
	maxBodyBytes    = 16 << 20
	userAgent       = "msgdash/twilio"
)

type Config struct {
	BaseURL    string
	PageSize   int
	HTTPClient *http.Client

	// RequestsPerSecond paces page requests; zero disables pacing.
	RequestsPerSecond float64
}

type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ports.MessageSource = (*Client)(nil)

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    baseURL,
		pageSize:   pageSize,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// ListMessages walks every page the API returns for the sent-date window.
// Records repeated across page boundaries are kept once.
func (c *Client) ListMessages(ctx context.Context, creds domain.Credentials, start, end time.Time) ([]domain.MessageRecord, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	next := c.firstPageURL(creds.AccountSID, start, end)
	records := make([]domain.MessageRecord, 0)
	seen := make(map[string]struct{})

	for next != "" {
		page, err := c.fetchPage(ctx, creds, next)
		if err != nil {
			return nil, err
		}

		for _, payload := range page.Messages {
			if _, ok := seen[payload.SID]; ok {
				continue
			}
			record, err := payload.toRecord()
			if err != nil {
				return nil, fmt.Errorf("%w: decode message: %w", domain.ErrFetchFailed, err)
			}
			seen[payload.SID] = struct{}{}
			records = append(records, record)
		}

		next, err = c.resolveNextPage(page.NextPageURI)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (c *Client) firstPageURL(accountSID string, start, end time.Time) string {
	query := url.Values{}
	query.Set("DateSent>", start.UTC().Format(queryTimeLayout))
	query.Set("DateSent<", end.UTC().Format(queryTimeLayout))
	query.Set("PageSize", strconv.Itoa(c.pageSize))

	return fmt.Sprintf("%s/%s/Accounts/%s/Messages.json?%s", c.baseURL, apiVersion, url.PathEscape(accountSID), query.Encode())
}

// resolveNextPage joins a relative next_page_uri to the base URL. Absolute URIs
// are followed only on the base URL's scheme and host, since every page request
// carries the account credentials.
func (c *Client) resolveNextPage(nextPageURI string) (string, error) {
	trimmed := strings.TrimSpace(nextPageURI)
	if trimmed == "" {
		return "", nil
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: parse next page uri: %w", domain.ErrFetchFailed, err)
	}
	if ref.Scheme == "" && ref.Host == "" {
		return c.baseURL + "/" + strings.TrimLeft(trimmed, "/"), nil
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse base url: %w", domain.ErrFetchFailed, err)
	}
	if !strings.EqualFold(ref.Scheme, base.Scheme) || !strings.EqualFold(ref.Host, base.Host) {
		return "", fmt.Errorf("%w: next page host %q does not match %q", domain.ErrFetchFailed, ref.Host, base.Host)
	}

	return trimmed, nil
}

func (c *Client) fetchPage(ctx context.Context, creds domain.Credentials, endpoint string) (messagePage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return messagePage{}, fmt.Errorf("wait for page slot: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return messagePage{}, fmt.Errorf("create request: %w", err)
	}
	request.SetBasicAuth(creds.AccountSID, creds.AuthToken)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return messagePage{}, fmt.Errorf("perform request: %w", ctxErr)
		}
		return messagePage{}, fmt.Errorf("%w: perform request: %w", domain.ErrTransientNetwork, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return messagePage{}, fmt.Errorf("%w: read response: %w", domain.ErrTransientNetwork, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		detail := errorDetail(body)
		if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
			return messagePage{}, fmt.Errorf("%w: status %d: %s", domain.ErrAuthentication, response.StatusCode, detail)
		}
		return messagePage{}, fmt.Errorf("%w: status %d: %s", domain.ErrFetchFailed, response.StatusCode, detail)
	}

	var page messagePage
	if err := json.Unmarshal(body, &page); err != nil {
		return messagePage{}, fmt.Errorf("%w: decode payload: %w", domain.ErrFetchFailed, err)
	}

	return page, nil
}

func errorDetail(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		if apiErr.Code != 0 {
			return fmt.Sprintf("%s (code %d)", apiErr.Message, apiErr.Code)
		}
		return apiErr.Message
	}

	return strings.TrimSpace(string(body))
}
