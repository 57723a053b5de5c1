package rates_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/cache"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/infra/rates"
	"github.com/foxfund/foxfund-go/internal/infra/resilience"
)

func newClient(baseURL string, maxRetries int) *rates.Client {
	return rates.NewClient(
		&http.Client{Timeout: 2 * time.Second},
		baseURL,
		resilience.NewCircuitBreaker("rates-test"),
		resilience.Config{MaxRetries: maxRetries, InitialBackoff: time.Millisecond, MaxConcurrency: 5},
		cache.New[domain.ExchangeRate](time.Minute),
		observability.NewMetrics(),
	)
}

func TestGetRate_FetchesAndCaches(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/GBP" {
			t.Errorf("expected base-currency path /GBP, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"result":"success","base_code":"GBP","conversion_rates":{"GBP":1,"USD":1.27,"EUR":1.17}}`)
	}))
	defer server.Close()

	client := newClient(server.URL, 1)

	rate, err := client.GetRate(context.Background(), "usd")
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	if rate.Currency != "USD" || rate.Rate != 1.27 || rate.Base != "GBP" {
		t.Errorf("unexpected rate: %+v", rate)
	}

	// Second call is served from cache.
	if _, err := client.GetRate(context.Background(), "USD"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

func TestGetRate_UnsupportedCurrency(t *testing.T) {
	client := newClient("http://never-called.invalid", 0)

	_, err := client.GetRate(context.Background(), "BTC")
	var unsupported *domain.ErrUnsupportedCurrency
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported currency error, got %v", err)
	}
}

func TestGetRate_RetriesThenFails(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(server.URL, 2)

	_, err := client.GetRate(context.Background(), "EUR")
	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
}
