package contracts

// RawSnapshot is the unprocessed market data for one ticker
// ⭐ SSOT: MarketDataProvider → Extractor 원시 데이터 전달
type RawSnapshot struct {
	Ticker       string        `json:"ticker"`
	Closes       []float64     `json:"closes"` // chronological, oldest first
	PE           OptionalFloat `json:"pe"`
	PB           OptionalFloat `json:"pb"`
	MarketCap    OptionalFloat `json:"market_cap"`
	FreeCashFlow OptionalFloat `json:"free_cash_flow"`
}

// HasPrices reports whether any close is available
func (s *RawSnapshot) HasPrices() bool {
	return s != nil && len(s.Closes) > 0
}
