package yahoo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/equityscreen/internal/contracts"
)

// Statistics holds the fundamentals scraped from the key-statistics page
type Statistics struct {
	PE           contracts.OptionalFloat
	PB           contracts.OptionalFloat
	MarketCap    contracts.OptionalFloat
	FreeCashFlow contracts.OptionalFloat
}

// Row labels on the key-statistics page. Labels carry suffixes such as
// "(intraday)" or footnote numbers, so they are matched by prefix.
const (
	labelMarketCap   = "Market Cap"
	labelTrailingPE  = "Trailing P/E"
	labelPriceToBook = "Price/Book"
	labelLeveredFCF  = "Levered Free Cash Flow"
)

// FetchStatistics scrapes valuation fields for a ticker.
// A ticker without a statistics page yields empty Statistics.
func (c *Client) FetchStatistics(ctx context.Context, ticker string) (*Statistics, error) {
	fullURL := fmt.Sprintf("%s/quote/%s/key-statistics", c.quoteURL, url.PathEscape(ticker))

	body, err := c.fetch(ctx, fullURL)
	if errors.Is(err, contracts.ErrNoData) {
		return &Statistics{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo statistics %s: %w", ticker, err)
	}

	stats, err := parseStatistics(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo statistics %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"pe":         stats.PE.Ptr(),
		"pb":         stats.PB.Ptr(),
		"market_cap": stats.MarketCap.Ptr(),
		"fcf":        stats.FreeCashFlow.Ptr(),
	}).Debug("Fetched key statistics")
	return stats, nil
}

// parseStatistics reads label/value table rows from the page
func parseStatistics(body []byte) (*Statistics, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html failed: %w", err)
	}

	stats := &Statistics{}
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		value := parseAbbreviated(cells.Eq(1).Text())

		switch {
		case strings.HasPrefix(label, labelMarketCap):
			setOnce(&stats.MarketCap, value)
		case strings.HasPrefix(label, labelTrailingPE):
			setOnce(&stats.PE, value)
		case strings.HasPrefix(label, labelPriceToBook):
			setOnce(&stats.PB, value)
		case strings.HasPrefix(label, labelLeveredFCF):
			setOnce(&stats.FreeCashFlow, value)
		}
	})

	return stats, nil
}

// setOnce keeps the first present value; later columns are historical
func setOnce(dst *contracts.OptionalFloat, v contracts.OptionalFloat) {
	if !dst.IsSet() {
		*dst = v
	}
}

var magnitudes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// parseAbbreviated parses values like "3.45T", "-1,204.5M", "28.53" or "N/A"
func parseAbbreviated(s string) contracts.OptionalFloat {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" || s == "--" || s == "-" {
		return contracts.None()
	}

	multiplier := 1.0
	if m, ok := magnitudes[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.None()
	}
	return contracts.Some(v * multiplier)
}
