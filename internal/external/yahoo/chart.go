package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/wonny/equityscreen/internal/contracts"
)

// chartResponse is the subset of the v8 chart payload we read
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchCloses fetches daily closes, oldest first.
// Split/dividend adjusted closes are preferred when Yahoo provides them.
func (c *Client) FetchCloses(ctx context.Context, ticker string, period contracts.Period) ([]float64, error) {
	params := url.Values{}
	params.Set("range", period.String())
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")
	params.Set("events", "div,split")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.chartURL, url.PathEscape(ticker), params.Encode())

	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	closes, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"period": period.String(),
		"count":  len(closes),
	}).Debug("Fetched closes")
	return closes, nil
}

// parseChart extracts closes and drops sessions without a close
func parseChart(body []byte) ([]float64, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, contracts.ErrNoData
		}
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, contracts.ErrNoData
	}

	result := resp.Chart.Result[0]

	var raw []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		raw = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		raw = result.Indicators.Quote[0].Close
	}

	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		closes = append(closes, *v)
	}

	if len(closes) == 0 {
		return nil, contracts.ErrNoData
	}
	return closes, nil
}
