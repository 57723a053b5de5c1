// Package rates fetches currency exchange rates from an external API,
// with caching, retry, and a circuit breaker in front of the upstream.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/infra/resilience"
	"github.com/foxfund/foxfund-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("rates")

// ratesResponse mirrors the upstream payload. Rates are quoted against
// the base currency.
type ratesResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Client fetches exchange rates with retry, circuit breaker, and a TTL cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	cache      port.Cache[domain.ExchangeRate]
	metrics    *observability.Metrics
}

// NewClient creates a rates client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, cache port.Cache[domain.ExchangeRate], metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		cache:      cache,
		metrics:    metrics,
	}
}

// GetRate returns the rate from the base currency into the given currency.
// Cached rates are served until their TTL expires.
func (c *Client) GetRate(ctx context.Context, currency string) (*domain.ExchangeRate, error) {
	ctx, span := tracer.Start(ctx, "RatesClient.GetRate")
	defer span.End()

	currency = strings.ToUpper(currency)
	span.SetAttributes(attribute.String("rate.currency", currency))

	if !domain.SupportedCurrency(currency) {
		return nil, &domain.ErrUnsupportedCurrency{Code: currency}
	}

	if cached, ok := c.cache.Get(currency); ok {
		c.metrics.IncrCacheHit("rates")
		return &cached, nil
	}
	c.metrics.IncrCacheMiss("rates")

	var payload ratesResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/%s", c.baseURL, domain.DefaultCurrency)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("rates API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&payload)
		})
		if innerErr != nil {
			return nil, innerErr
		}

		rate, ok := payload.ConversionRates[currency]
		if !ok {
			return nil, &domain.ErrUnsupportedCurrency{Code: currency}
		}

		return &domain.ExchangeRate{
			Base:      domain.DefaultCurrency,
			Currency:  currency,
			Rate:      rate,
			FetchedAt: time.Now().UTC(),
		}, nil
	})

	if err != nil {
		c.metrics.IncrStoreError("rates")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "rates"}
		}
		var unsupported *domain.ErrUnsupportedCurrency
		if errors.As(err, &unsupported) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "rates", Err: err}
	}

	exRate := result.(*domain.ExchangeRate)
	c.cache.Set(currency, *exRate)
	return exRate, nil
}
