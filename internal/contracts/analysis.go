package contracts

import "time"

// StockAnalysis holds the metrics computed for one ticker
// ⭐ SSOT: Extractor → Scorer 지표 전달 (생성 후 불변)
type StockAnalysis struct {
	Ticker            string        `json:"ticker"`
	Momentum21D       OptionalFloat `json:"momentum_21d"`
	Volatility21D     OptionalFloat `json:"volatility_21d"`
	PE                OptionalFloat `json:"pe_ratio"`
	PB                OptionalFloat `json:"pb_ratio"`
	FreeCashFlowYield OptionalFloat `json:"free_cash_flow_yield"`
	MarketCap         OptionalFloat `json:"market_cap"`
	LastUpdated       time.Time     `json:"last_updated"`
}

// ValuationFields returns the metrics that feed the value sub-score
func (a *StockAnalysis) ValuationFields() []OptionalFloat {
	return []OptionalFloat{a.PE, a.PB, a.FreeCashFlowYield}
}
