package marketdata

import (
	"context"
	"fmt"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/external/yahoo"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/pkg/config"
	"github.com/wonny/equityscreen/pkg/database"
	"github.com/wonny/equityscreen/pkg/httputil"
	"github.com/wonny/equityscreen/pkg/logger"
	"github.com/wonny/equityscreen/pkg/redis"
)

// Provider is a configured market data source with its resources
type Provider struct {
	contracts.MarketDataProvider

	db    *database.DB
	redis *redis.Client
}

// Close releases the connections held by the provider
func (p *Provider) Close() {
	if p.db != nil {
		p.db.Close()
	}
	if p.redis != nil {
		p.redis.Close()
	}
}

// New builds the market data source named by source (config.SourceYahoo or
// config.SourcePostgres), wrapped in the Redis snapshot cache when Redis is enabled.
// ⭐ SSOT: 데이터 소스 조립은 여기서만
func New(ctx context.Context, cfg *config.Config, source string, log *logger.Logger, metrics *monitoring.Metrics) (*Provider, error) {
	if source == "" {
		source = cfg.Screener.Source
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	p := &Provider{redis: rdb}

	var base contracts.MarketDataProvider
	switch source {
	case config.SourceYahoo:
		httpClient := httputil.New(cfg, log)
		if rdb.Enabled() {
			limiter := redis.NewRateLimiter(rdb, "screener")
			httpClient.WithRateLimiter(limiter, redis.YahooRateLimit(cfg.Yahoo.RequestsPerSecond))
		} else {
			httpClient.WithLocalLimiter(cfg.Yahoo.RequestsPerSecond, 1)
		}
		base = yahoo.NewClient(httpClient, cfg.Yahoo, log).WithMetrics(metrics)

	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		p.db = db
		base = NewPostgresProvider(db, log).WithMetrics(metrics)

	default:
		p.Close()
		return nil, fmt.Errorf("unknown market data source %q", source)
	}

	if rdb.Enabled() {
		cache := redis.NewCache(rdb, "screener")
		base = NewCachedProvider(base, cache, cfg.Screener.CacheTTL, log).WithMetrics(metrics)
	}

	p.MarketDataProvider = base

	log.WithFields(map[string]interface{}{
		"source": source,
		"cache":  rdb.Enabled(),
	}).Info("Market data provider ready")

	return p, nil
}
