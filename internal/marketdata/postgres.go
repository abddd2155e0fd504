package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/pkg/logger"
)

// SourcePostgres labels warehouse requests in metrics and logs
const SourcePostgres = "postgres"

// querier is satisfied by *database.DB
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresProvider reads snapshots from the market data warehouse
// ⭐ SSOT: 웨어하우스 시세/재무 조회는 여기서만
type PostgresProvider struct {
	db      querier
	logger  *logger.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewPostgresProvider creates a provider on a pgx pool
func NewPostgresProvider(db querier, log *logger.Logger) *PostgresProvider {
	return &PostgresProvider{
		db:     db,
		logger: log,
		now:    time.Now,
	}
}

// WithMetrics records request outcomes on m
func (p *PostgresProvider) WithMetrics(m *monitoring.Metrics) *PostgresProvider {
	p.metrics = m
	return p
}

// Snapshot loads closes since the period start and the latest fundamentals row
func (p *PostgresProvider) Snapshot(ctx context.Context, ticker string, period contracts.Period) (*contracts.RawSnapshot, error) {
	start := time.Now()

	snapshot, err := p.snapshot(ctx, ticker, period)

	status := monitoring.ProviderSuccess
	if err != nil {
		status = monitoring.ProviderFailure
	} else if !snapshot.HasPrices() {
		status = monitoring.ProviderNoData
	}
	p.metrics.ProviderRequest(SourcePostgres, status, time.Since(start))

	return snapshot, err
}

func (p *PostgresProvider) snapshot(ctx context.Context, ticker string, period contracts.Period) (*contracts.RawSnapshot, error) {
	closes, err := p.closes(ctx, ticker, period.Start(p.now()))
	if err != nil {
		return nil, fmt.Errorf("load closes %s: %w", ticker, err)
	}

	snapshot := &contracts.RawSnapshot{
		Ticker: ticker,
		Closes: closes,
	}

	if err := p.fundamentals(ctx, ticker, snapshot); err != nil {
		return nil, fmt.Errorf("load fundamentals %s: %w", ticker, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"period": period.String(),
		"count":  len(closes),
	}).Debug("Loaded snapshot from warehouse")

	return snapshot, nil
}

func (p *PostgresProvider) closes(ctx context.Context, ticker string, from time.Time) ([]float64, error) {
	query := `
		SELECT close_price
		FROM data.daily_prices
		WHERE stock_code = $1 AND trade_date >= $2 AND close_price IS NOT NULL
		ORDER BY trade_date ASC
	`

	rows, err := p.db.Query(ctx, query, ticker, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		closes = append(closes, c)
	}
	return closes, rows.Err()
}

// fundamentals fills valuation fields from the most recent report; missing rows or
// NULL columns leave the fields absent
func (p *PostgresProvider) fundamentals(ctx context.Context, ticker string, snapshot *contracts.RawSnapshot) error {
	query := `
		SELECT per, pbr, market_cap, free_cash_flow
		FROM data.fundamentals
		WHERE stock_code = $1
		ORDER BY report_date DESC
		LIMIT 1
	`

	var pe, pb, marketCap, fcf *float64
	err := p.db.QueryRow(ctx, query, ticker).Scan(&pe, &pb, &marketCap, &fcf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	snapshot.PE = contracts.FromPtr(pe)
	snapshot.PB = contracts.FromPtr(pb)
	snapshot.MarketCap = contracts.FromPtr(marketCap)
	snapshot.FreeCashFlow = contracts.FromPtr(fcf)
	return nil
}
