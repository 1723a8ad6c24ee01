package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/analytics"
	"github.com/sargasolutions/campaign-engine/internal/cache"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"go.uber.org/zap"
)

const defaultWindowDays = 7

// TimeSeriesResult wraps a reconstructed series with the degraded-state
// envelope the API exposes.
type TimeSeriesResult struct {
	Success bool              `json:"success"`
	Series  domain.TimeSeries `json:"series"`
	Message string            `json:"message,omitempty"`
}

// ConnectionTest reports whether the reporting API answers at all.
type ConnectionTest struct {
	Success     bool   `json:"success"`
	ActiveUsers int64  `json:"activeUsers"`
	Cause       string `json:"cause,omitempty"`
	Message     string `json:"message,omitempty"`
}

// AnalyticsService serves traffic overviews and time series from the
// reporting source, memoized per slot. Upstream failures are classified
// and degrade into structured empty responses; the service never
// propagates a reporting error to its callers.
type AnalyticsService struct {
	source        analytics.Source
	reconstructor *analytics.Reconstructor
	results       *cache.Cache
	logger        *zap.Logger
	metrics       *observability.Metrics
	windowDays    int
}

func NewAnalyticsService(
	source analytics.Source,
	reconstructor *analytics.Reconstructor,
	results *cache.Cache,
	windowDays int,
	logger *zap.Logger,
) (*AnalyticsService, error) {
	if source == nil {
		return nil, fmt.Errorf("analytics source is required")
	}
	if reconstructor == nil {
		return nil, fmt.Errorf("reconstructor is required")
	}
	if results == nil {
		return nil, fmt.Errorf("result cache is required")
	}
	if windowDays < 1 {
		windowDays = defaultWindowDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnalyticsService{
		source:        source,
		reconstructor: reconstructor,
		results:       results,
		logger:        logger,
		windowDays:    windowDays,
	}, nil
}

func (s *AnalyticsService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Overview returns realtime actives plus trailing-window totals. Fresh
// cached values are served as-is; only successful refreshes are cached,
// so a degraded answer is recomputed on the next call.
func (s *AnalyticsService) Overview(ctx context.Context) *domain.AnalyticsOverview {
	if cached, ok := s.results.Get(cache.SlotOverview); ok {
		s.metrics.IncCacheLookup(cache.SlotOverview, true)
		if overview, ok := cached.(*domain.AnalyticsOverview); ok {
			return overview
		}
	}
	s.metrics.IncCacheLookup(cache.SlotOverview, false)

	overview, err := s.refreshOverview(ctx)
	if err != nil {
		cause := analytics.Classify(err)
		s.logger.Warn("analytics overview refresh failed",
			zap.String("cause", string(cause)),
			zap.Error(err),
		)
		return &domain.AnalyticsOverview{
			Success:    false,
			WindowDays: s.windowDays,
			Message:    analytics.DegradedMessage(cause),
		}
	}

	s.results.Set(cache.SlotOverview, overview)
	return overview
}

func (s *AnalyticsService) refreshOverview(ctx context.Context) (*domain.AnalyticsOverview, error) {
	active, err := s.source.RunRealtime(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.source.RunAggregate(ctx, s.windowDays)
	if err != nil {
		return nil, err
	}

	overview := &domain.AnalyticsOverview{
		Success:     true,
		ActiveUsers: active,
		WindowDays:  s.windowDays,
	}
	if totals != nil {
		overview.Traffic = domain.TrafficTotals{
			Sessions:   totals.Sessions,
			Users:      totals.Users,
			PageViews:  totals.PageViews,
			BounceRate: roundedPercent(totals.BounceRate),
		}
	}

	return overview, nil
}

// TimeSeries returns the reconstructed daily window. A reconstruction
// failure degrades to an unsuccessful result with an empty series.
func (s *AnalyticsService) TimeSeries(ctx context.Context) *TimeSeriesResult {
	if cached, ok := s.results.Get(cache.SlotTimeSeries7d); ok {
		s.metrics.IncCacheLookup(cache.SlotTimeSeries7d, true)
		if result, ok := cached.(*TimeSeriesResult); ok {
			return result
		}
	}
	s.metrics.IncCacheLookup(cache.SlotTimeSeries7d, false)

	series, err := s.reconstructor.Reconstruct(ctx, s.windowDays)
	if err != nil {
		cause := analytics.Classify(err)
		s.logger.Warn("time series reconstruction failed",
			zap.String("cause", string(cause)),
			zap.Error(err),
		)
		return &TimeSeriesResult{
			Success: false,
			Series:  domain.TimeSeries{Points: []domain.TimeSeriesPoint{}},
			Message: analytics.DegradedMessage(cause),
		}
	}

	result := &TimeSeriesResult{
		Success: true,
		Series:  *series,
	}
	s.results.Set(cache.SlotTimeSeries7d, result)
	return result
}

// TestConnection probes the reporting API with the cheapest realtime
// query, bypassing the cache.
func (s *AnalyticsService) TestConnection(ctx context.Context) *ConnectionTest {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	active, err := s.source.RunRealtime(probeCtx)
	if err != nil {
		cause := analytics.Classify(err)
		return &ConnectionTest{
			Success: false,
			Cause:   string(cause),
			Message: analytics.DegradedMessage(cause),
		}
	}

	return &ConnectionTest{
		Success:     true,
		ActiveUsers: active,
	}
}

// ClearCache drops memoized analytics results, forcing fresh queries.
func (s *AnalyticsService) ClearCache() {
	s.results.Clear(cache.SlotOverview, cache.SlotTimeSeries7d)
}

// roundedPercent converts a 0..1 bounce fraction to a percentage with one
// decimal of precision.
func roundedPercent(fraction float64) float64 {
	return math.Round(fraction*1000) / 10
}
