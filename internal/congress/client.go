// Package congress implements the HTTP client for the Congress.gov API v3
// (the external legislative-data source consumed by the ingestion service).
//
// The client is deliberately thin: it lists recently-updated bills with
// offset/limit paging and fetches single-bill details. Transient upstream
// failures (5xx, 429) are retried with exponential backoff; everything else
// is returned to the caller, which treats a failed page fetch as a failed
// ingestion run.
package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.congress.gov/v3"
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// BillListItem is one entry of the recently-updated bill listing.
type BillListItem struct {
	Type           string     // e.g. "hr", "s", "hjres"
	Number         string     // bill number as reported by the source
	Congress       int        // congress number; 0 when absent
	Title          string
	IntroducedDate *time.Time // nil when the source omits it
	URL            string     // canonical Congress.gov link
}

// BillDetails is the full record of a single bill.
type BillDetails struct {
	BillListItem
	OfficialSummary  string
	LatestActionText string
}

// Client talks to the Congress.gov API. The zero value is not usable; use
// NewClient.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	backoff time.Duration
}

// NewClient returns a client for the given base URL (empty means the public
// Congress.gov endpoint) authenticating with apiKey.
func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		backoff: initialBackoff,
	}
}

// billListResponse mirrors the /bill listing payload.
type billListResponse struct {
	Bills []struct {
		Congress       int    `json:"congress"`
		Type           string `json:"type"`
		Number         string `json:"number"`
		Title          string `json:"title"`
		IntroducedDate string `json:"introducedDate"`
		URL            string `json:"url"`
	} `json:"bills"`
}

// billDetailsResponse mirrors the /bill/{congress}/{type}/{number} payload.
type billDetailsResponse struct {
	Bill struct {
		Congress       int    `json:"congress"`
		Type           string `json:"type"`
		Number         string `json:"number"`
		Title          string `json:"title"`
		IntroducedDate string `json:"introducedDate"`
		LatestAction   struct {
			Text string `json:"text"`
		} `json:"latestAction"`
	} `json:"bill"`
	Summaries []struct {
		Text string `json:"text"`
	} `json:"summaries"`
}

// GetRecentBills lists bills whose latest action falls on or after fromDate,
// paged by offset/limit.
func (c *Client) GetRecentBills(ctx context.Context, fromDate time.Time, offset, limit int) ([]BillListItem, error) {
	q := url.Values{}
	q.Set("fromDateTime", fromDate.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("offset", fmt.Sprintf("%d", offset))
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("format", "json")

	body, err := c.fetchWithRetry(ctx, c.baseURL+"/bill?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp billListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode bill listing: %w", err)
	}

	out := make([]BillListItem, 0, len(resp.Bills))
	for _, b := range resp.Bills {
		out = append(out, BillListItem{
			Type:           b.Type,
			Number:         b.Number,
			Congress:       b.Congress,
			Title:          b.Title,
			IntroducedDate: parseDate(b.IntroducedDate),
			URL:            b.URL,
		})
	}
	return out, nil
}

// GetBillDetails fetches the full record of one bill.
func (c *Client) GetBillDetails(ctx context.Context, congressNum int, billType, number string) (*BillDetails, error) {
	path := fmt.Sprintf("%s/bill/%d/%s/%s?format=json", c.baseURL, congressNum, strings.ToLower(billType), url.PathEscape(number))
	body, err := c.fetchWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp billDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode bill details: %w", err)
	}

	details := &BillDetails{
		BillListItem: BillListItem{
			Type:           resp.Bill.Type,
			Number:         resp.Bill.Number,
			Congress:       resp.Bill.Congress,
			Title:          resp.Bill.Title,
			IntroducedDate: parseDate(resp.Bill.IntroducedDate),
		},
	}
	details.LatestActionText = resp.Bill.LatestAction.Text
	if len(resp.Summaries) > 0 {
		details.OfficialSummary = resp.Summaries[0].Text
	}
	return details, nil
}

// fetchWithRetry performs a GET with the API key attached, retrying
// transient upstream failures with exponential backoff.
func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	u := rawURL
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "api_key=" + url.QueryEscape(c.apiKey)
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Str("url", rawURL).Int("attempt", attempt).Err(lastErr).Msg("retrying congress.gov fetch")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("congress.gov returned %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("congress.gov returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}
	return nil, fmt.Errorf("congress.gov fetch failed after %d retries: %w", maxRetries, lastErr)
}

// parseDate parses the source's YYYY-MM-DD dates, returning nil when absent
// or malformed.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
