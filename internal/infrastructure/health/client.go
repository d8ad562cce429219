package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/healthpal/backend/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Quantity identifiers understood by the metrics sync endpoint.
const (
	quantitySteps        = "steps"
	quantityHeartRate    = "heart-rate"
	quantityActiveEnergy = "active-energy"
)

// Client fetches daily health metrics from the wearable sync service.
// It fails closed: any transport, HTTP or decode failure yields zero for
// the affected quantity and no error is surfaced to callers. An all-zero
// snapshot therefore means "no data", never "the fetch succeeded with
// zero activity".
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new metrics client.
func NewClient(baseURL string) *Client {
	// The sync service allows 60 requests per minute per instance.
	limiter := rate.NewLimiter(rate.Limit(1), 6)

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// quantityResponse is the per-quantity reply shape.
type quantityResponse struct {
	Value float64 `json:"value"`
}

// Fetch returns the day's snapshot. The three quantities are fetched
// concurrently and joined before returning; the triple is never applied
// piecemeal.
func (c *Client) Fetch(ctx context.Context, date time.Time) domain.MetricsSnapshot {
	snapshot := domain.MetricsSnapshot{Date: date}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snapshot.Steps = c.fetchQuantity(gctx, quantitySteps, date)
		return nil
	})
	g.Go(func() error {
		snapshot.HeartRate = c.fetchQuantity(gctx, quantityHeartRate, date)
		return nil
	})
	g.Go(func() error {
		snapshot.ActiveEnergy = c.fetchQuantity(gctx, quantityActiveEnergy, date)
		return nil
	})
	_ = g.Wait() // goroutines absorb their own failures

	return snapshot
}

// fetchQuantity retrieves one quantity, returning 0 on any failure.
func (c *Client) fetchQuantity(ctx context.Context, quantity string, date time.Time) float64 {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0
	}

	endpoint := fmt.Sprintf("%s/v1/metrics/%s", c.baseURL, quantity)
	params := url.Values{}
	params.Add("date", date.Local().Format("2006-01-02"))
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", "HealthPal/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Health] %s fetch error: %v", quantity, err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Health] %s fetch failed - Status: %d", quantity, resp.StatusCode)
		return 0
	}

	var reply quantityResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		log.Printf("[Health] %s decode error: %v", quantity, err)
		return 0
	}

	if reply.Value < 0 {
		return 0
	}
	return reply.Value
}
