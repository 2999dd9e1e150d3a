package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// ErrSearchFailed wraps every failure of the flight search API: transport errors,
// non-2xx statuses, undecodable bodies and error fields embedded in the JSON.
var ErrSearchFailed = errors.New("flight search failed")

// Searcher looks up flights for a query using the given API key.
type Searcher interface {
	Search(ctx context.Context, apiKey string, q Query) ([]Record, error)
}

// Client queries the Google Flights engine of SerpAPI with a URL-parameterised GET.
type Client struct {
	baseURL    string
	currency   string
	maxResults int
	http       *http.Client
}

// DefaultBaseURL is the SerpAPI search endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// NewClient creates a Client. An empty baseURL uses DefaultBaseURL. A nil httpClient uses a client with no explicit timeout;
// cancellation comes from the request context.
func NewClient(baseURL, currency string, maxResults int, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		currency:   currency,
		maxResults: maxResults,
		http:       httpClient,
	}
}

type searchResponse struct {
	BestFlights  []Record `json:"best_flights"`
	OtherFlights []Record `json:"other_flights"`
	Error        string   `json:"error,omitempty"`
}

func (c *Client) Search(ctx context.Context, apiKey string, q Query) ([]Record, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", strings.ToUpper(strings.TrimSpace(q.Origin)))
	params.Set("arrival_id", strings.ToUpper(strings.TrimSpace(q.Destination)))
	params.Set("outbound_date", q.Date.Format("2006-01-02"))
	params.Set("type", "2") // one way
	params.Set("currency", c.currency)
	params.Set("hl", "en")
	params.Set("api_key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSearchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error embeds the full URL, including the api key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: do request: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSearchFailed, err)
	}

	var sr searchResponse
	decodeErr := json.Unmarshal(body, &sr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := sr.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchFailed, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, decodeErr)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("%w: api error: %s", ErrSearchFailed, sr.Error)
	}

	records := lo.Filter(append(sr.BestFlights, sr.OtherFlights...), func(r Record, _ int) bool {
		return len(r.Flights) > 0
	})
	if c.maxResults > 0 && len(records) > c.maxResults {
		records = records[:c.maxResults]
	}
	return records, nil
}
