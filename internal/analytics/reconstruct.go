package analytics

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"

	"go.uber.org/zap"
)

const (
	usersPerSession     = 0.75
	pageViewsPerSession = 2.3
	recencyWeight       = 0.1
	varianceSpan        = 0.6
	varianceFloor       = 0.7
	bounceJitterSpan    = 8.0
)

// Reconstructor produces a gapless daily time series for a trailing
// window, degrading through three tiers when the reporting API cannot
// serve the richer queries:
//
//  1. full daily breakdown with bounce rate,
//  2. daily breakdown with the reduced metric set,
//  3. a synthetic distribution of the window aggregate.
//
// Tier three spreads total sessions across the window with a mild recency
// ramp and bounded per-day variance so charts stay plausible; its points
// are marked estimated.
type Reconstructor struct {
	source    Source
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	randFloat func() float64
}

func NewReconstructor(source Source, logger *zap.Logger, metrics *observability.Metrics) (*Reconstructor, error) {
	return newReconstructor(source, logger, metrics, time.Now, rand.Float64)
}

func newReconstructor(
	source Source,
	logger *zap.Logger,
	metrics *observability.Metrics,
	nowFn func() time.Time,
	randFn func() float64,
) (*Reconstructor, error) {
	if source == nil {
		return nil, fmt.Errorf("analytics source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if randFn == nil {
		randFn = rand.Float64
	}

	return &Reconstructor{
		source:    source,
		logger:    logger,
		metrics:   metrics,
		now:       nowFn,
		randFloat: randFn,
	}, nil
}

// Reconstruct returns the best available series for the trailing window.
// It only fails when every tier fails; an upstream window with no data at
// all yields an empty series, not an error.
func (r *Reconstructor) Reconstruct(ctx context.Context, windowDays int) (*domain.TimeSeries, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("window must be at least one day, got %d", windowDays)
	}

	rows, err := r.source.RunDaily(ctx, windowDays, true)
	if err == nil && len(rows) > 0 {
		r.metrics.IncAnalyticsTier(domain.SeriesSourceDaily.String())
		return &domain.TimeSeries{
			Points: r.fillWindow(rows, windowDays),
			Source: domain.SeriesSourceDaily,
		}, nil
	}
	if err != nil {
		r.logger.Warn("daily analytics query failed, trying reduced metric set",
			zap.Int("window_days", windowDays),
			zap.Error(err),
		)
	}

	rows, reducedErr := r.source.RunDaily(ctx, windowDays, false)
	if reducedErr == nil && len(rows) > 0 {
		r.metrics.IncAnalyticsTier(domain.SeriesSourceDailyReduced.String())
		return &domain.TimeSeries{
			Points: r.fillWindow(rows, windowDays),
			Source: domain.SeriesSourceDailyReduced,
		}, nil
	}
	if reducedErr != nil {
		r.logger.Warn("reduced daily analytics query failed, trying aggregate estimate",
			zap.Int("window_days", windowDays),
			zap.Error(reducedErr),
		)
	}

	totals, aggErr := r.source.RunAggregate(ctx, windowDays)
	if aggErr != nil {
		// All tiers failed; the first error is the most descriptive.
		if err != nil {
			return nil, err
		}
		if reducedErr != nil {
			return nil, reducedErr
		}
		return nil, aggErr
	}

	if totals == nil || totals.Sessions <= 0 {
		return &domain.TimeSeries{Points: []domain.TimeSeriesPoint{}}, nil
	}

	r.metrics.IncAnalyticsTier(domain.SeriesSourceEstimate.String())
	return &domain.TimeSeries{
		Points: r.synthesize(totals, windowDays),
		Source: domain.SeriesSourceEstimate,
	}, nil
}

// fillWindow maps measured rows onto a gapless ascending window ending
// yesterday, zero-filling days the source had no row for.
func (r *Reconstructor) fillWindow(rows []DailyRow, windowDays int) []domain.TimeSeriesPoint {
	byDate := make(map[string]DailyRow, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	end := r.today().AddDate(0, 0, -1)
	points := make([]domain.TimeSeriesPoint, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		point := domain.TimeSeriesPoint{Date: date}
		if row, ok := byDate[date]; ok {
			point.Sessions = row.Sessions
			point.Users = row.Users
			point.PageViews = row.PageViews
			if row.HasBounceRate {
				point.BounceRate = roundTenth(row.BounceRate * 100)
				point.HasBounceRate = true
			}
		}
		points = append(points, point)
	}

	return points
}

// synthesize spreads aggregate totals over a window ending today. Recent
// days trend slightly higher and every day gets bounded random variance;
// derived users and page views keep realistic per-session ratios.
func (r *Reconstructor) synthesize(totals *Totals, windowDays int) []domain.TimeSeriesPoint {
	days := windowDays
	dailyBase := totals.Sessions / int64(days)
	today := r.today()

	points := make([]domain.TimeSeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		recency := 1 + float64(days-i-1)*recencyWeight/float64(days)
		variance := r.randFloat()*varianceSpan + varianceFloor
		sessions := int64(math.Floor(float64(dailyBase) * recency * variance))
		if sessions < 0 {
			sessions = 0
		}

		bounce := totals.BounceRate*100 + (r.randFloat()-0.5)*bounceJitterSpan
		if bounce < 0 {
			bounce = 0
		}
		if bounce > 100 {
			bounce = 100
		}

		points = append(points, domain.TimeSeriesPoint{
			Date:          today.AddDate(0, 0, -i).Format("2006-01-02"),
			Sessions:      sessions,
			Users:         int64(math.Floor(float64(sessions) * usersPerSession)),
			PageViews:     int64(math.Floor(float64(sessions) * pageViewsPerSession)),
			BounceRate:    roundTenth(bounce),
			HasBounceRate: true,
			Estimated:     true,
		})
	}

	return points
}

func (r *Reconstructor) today() time.Time {
	t := r.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
