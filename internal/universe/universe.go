package universe

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// defaultTickers is a diversified US large-cap universe
var defaultTickers = []string{
	"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "TSLA", "JPM", "UNH", "JNJ",
	"V", "PG", "MA", "HD", "XOM", "CVX", "KO", "PEP", "MRK", "ABBV",
	"BAC", "AVGO", "ADBE", "CSCO", "PFE", "LLY", "ORCL", "TMO", "ACN", "DHR",
	"COST", "MCD", "CRM", "ABT", "TXN", "LIN", "WFC", "UPS", "PM", "INTC",
	"HON", "MS", "NEE", "UNP", "RTX", "LOW", "QCOM", "NKE", "AMD",
}

// Default returns a copy of the default universe
func Default() []string {
	out := make([]string, len(defaultTickers))
	copy(out, defaultTickers)
	return out
}

// ParseTickers splits comma or newline separated symbols.
// Blank entries and lines starting with '#' are skipped; symbols are upper-cased.
func ParseTickers(content string) []string {
	var tickers []string
	for _, raw := range strings.Split(strings.ReplaceAll(content, ",", "\n"), "\n") {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" || strings.HasPrefix(symbol, "#") {
			continue
		}
		tickers = append(tickers, symbol)
	}
	return tickers
}

// LoadFile reads a ticker file
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	return ParseTickers(string(data)), nil
}

// Resolve merges file and explicit tickers into a sorted, de-duplicated universe.
// With neither given, the default universe is used.
// ⭐ SSOT: 스크리닝 대상 종목 결정은 여기서만
func Resolve(tickers []string, file string) ([]string, error) {
	var all []string

	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, fromFile...)
	}

	for _, t := range tickers {
		all = append(all, ParseTickers(t)...)
	}

	if len(all) == 0 {
		all = Default()
	}

	seen := make(map[string]struct{}, len(all))
	unique := make([]string, 0, len(all))
	for _, t := range all {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	sort.Strings(unique)

	return unique, nil
}
