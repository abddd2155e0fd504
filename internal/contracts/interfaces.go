package contracts

import "context"

// MarketDataProvider supplies raw market data per ticker.
// Unavailable tickers yield ErrNoData or an empty Closes series.
// ⭐ SSOT: 시장 데이터 소스 인터페이스
type MarketDataProvider interface {
	Snapshot(ctx context.Context, ticker string, period Period) (*RawSnapshot, error)
}
