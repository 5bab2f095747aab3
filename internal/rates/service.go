package rates

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"walletpalz/internal/cache"
	"walletpalz/internal/logger"
	"walletpalz/internal/metrics"
)

// Fetcher retrieves a fresh rate table for a base currency.
type Fetcher interface {
	Fetch(ctx context.Context, base string) (Table, error)
}

// Service is a read-through cache in front of a Fetcher. Concurrent lookups
// for the same base currency share one upstream request.
type Service struct {
	fetcher Fetcher
	tables  *cache.LRU[Table]
	group   singleflight.Group
	log     *zap.SugaredLogger
}

// NewService creates a Service caching each base currency's table for ttl.
func NewService(fetcher Fetcher, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		tables:  cache.NewLRU[Table](64, ttl),
		log:     logger.Named("rates"),
	}
}

// FetchRates returns the rate table relative to base. It never fails: when
// the provider cannot be reached or answers garbage the failure is logged and
// an empty table is returned, which makes ToBase fall back to unconverted
// amounts. Empty results are not cached so the next call retries.
func (s *Service) FetchRates(ctx context.Context, base string) Table {
	base = strings.ToUpper(base)

	if table, ok := s.tables.Get(base); ok {
		metrics.RateFetches.WithLabelValues("hit").Inc()
		return table
	}

	out, err, _ := s.group.Do(base, func() (interface{}, error) {
		table, err := s.fetcher.Fetch(ctx, base)
		if err != nil {
			return nil, err
		}
		s.tables.Set(base, table)
		return table, nil
	})
	if err != nil {
		metrics.RateFetches.WithLabelValues("failed").Inc()
		s.log.Warnw("failed to fetch exchange rates", "base", base, "error", err)
		return Table{}
	}

	metrics.RateFetches.WithLabelValues("fetched").Inc()
	return out.(Table)
}

// Invalidate drops the cached table for base.
func (s *Service) Invalidate(base string) {
	s.tables.Delete(strings.ToUpper(base))
}
