package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/pkg/config"
	"github.com/wonny/equityscreen/pkg/httputil"
	"github.com/wonny/equityscreen/pkg/logger"
)

// SourceName labels Yahoo requests in metrics and logs
const SourceName = "yahoo"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string
	quoteURL   string
	breaker    *gobreaker.CircuitBreaker
	metrics    *monitoring.Metrics
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		chartURL:   strings.TrimRight(cfg.ChartURL, "/"),
		quoteURL:   strings.TrimRight(cfg.QuoteURL, "/"),
	}
	c.breaker = newBreaker(SourceName, log)
	return c
}

// WithMetrics records request outcomes on m
func (c *Client) WithMetrics(m *monitoring.Metrics) *Client {
	c.metrics = m
	return c
}

// newBreaker trips after consecutive failures or a sustained failure ratio.
// "No data" answers are healthy responses and never count against the breaker.
func newBreaker(name string, log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, contracts.ErrNoData) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// Snapshot fetches price history and key statistics for a ticker.
// Fundamentals are best effort: a failed statistics page leaves them absent.
func (c *Client) Snapshot(ctx context.Context, ticker string, period contracts.Period) (*contracts.RawSnapshot, error) {
	closes, err := c.FetchCloses(ctx, ticker, period)
	if err != nil {
		return nil, err
	}

	snapshot := &contracts.RawSnapshot{
		Ticker: ticker,
		Closes: closes,
	}

	stats, err := c.FetchStatistics(ctx, ticker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WithTicker(ticker).WithError(err).Warn("Key statistics unavailable, continuing without fundamentals")
		return snapshot, nil
	}

	snapshot.PE = stats.PE
	snapshot.PB = stats.PB
	snapshot.MarketCap = stats.MarketCap
	snapshot.FreeCashFlow = stats.FreeCashFlow
	return snapshot, nil
}

// fetch performs a GET through the circuit breaker.
// 404 is reported as contracts.ErrNoData.
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
			"User-Agent": userAgent,
			"Accept":     "text/html,application/json;q=0.9,*/*;q=0.8",
		})
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, contracts.ErrNoData
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, nil
	})

	c.metrics.ProviderRequest(SourceName, requestStatus(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func requestStatus(err error) string {
	switch {
	case err == nil:
		return monitoring.ProviderSuccess
	case errors.Is(err, contracts.ErrNoData):
		return monitoring.ProviderNoData
	default:
		return monitoring.ProviderFailure
	}
}
