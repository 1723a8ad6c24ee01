package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"

	"go.uber.org/zap"
)

type fakeSource struct {
	aggregateTotals *Totals
	aggregateErr    error
	dailyRows       []DailyRow
	dailyErr        error
	reducedRows     []DailyRow
	reducedErr      error
	realtimeUsers   int64
	realtimeErr     error

	dailyCalls   []bool
	aggregateHit bool
}

func (f *fakeSource) RunAggregate(ctx context.Context, windowDays int) (*Totals, error) {
	f.aggregateHit = true
	return f.aggregateTotals, f.aggregateErr
}

func (f *fakeSource) RunDaily(ctx context.Context, windowDays int, includeBounce bool) ([]DailyRow, error) {
	f.dailyCalls = append(f.dailyCalls, includeBounce)
	if includeBounce {
		return f.dailyRows, f.dailyErr
	}
	return f.reducedRows, f.reducedErr
}

func (f *fakeSource) RunRealtime(ctx context.Context) (int64, error) {
	return f.realtimeUsers, f.realtimeErr
}

func newTestReconstructor(t *testing.T, source Source, seed float64) *Reconstructor {
	t.Helper()

	r, err := newReconstructor(
		source,
		zap.NewNop(),
		observability.NewMetrics(),
		func() time.Time { return time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC) },
		func() float64 { return seed },
	)
	if err != nil {
		t.Fatalf("newReconstructor() error = %v", err)
	}
	return r
}

func TestReconstructDailyTier(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		dailyRows: []DailyRow{
			{Date: "2026-03-12", Sessions: 40, Users: 30, PageViews: 90, BounceRate: 0.42, HasBounceRate: true},
			{Date: "2026-03-14", Sessions: 55, Users: 41, PageViews: 120, BounceRate: 0.38, HasBounceRate: true},
		},
	}
	r := newTestReconstructor(t, source, 0.5)

	series, err := r.Reconstruct(context.Background(), 7)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if series.Source != domain.SeriesSourceDaily {
		t.Fatalf("Source = %q, want %q", series.Source, domain.SeriesSourceDaily)
	}
	if len(series.Points) != 7 {
		t.Fatalf("len(Points) = %d, want 7", len(series.Points))
	}
	if series.Points[0].Date != "2026-03-08" {
		t.Errorf("first date = %q, want 2026-03-08", series.Points[0].Date)
	}
	if series.Points[6].Date != "2026-03-14" {
		t.Errorf("last date = %q, want 2026-03-14", series.Points[6].Date)
	}

	for i := 1; i < len(series.Points); i++ {
		if series.Points[i].Date <= series.Points[i-1].Date {
			t.Errorf("dates not strictly ascending at index %d: %q then %q", i, series.Points[i-1].Date, series.Points[i].Date)
		}
	}

	last := series.Points[6]
	if last.Sessions != 55 || last.Users != 41 || last.PageViews != 120 {
		t.Errorf("measured point = %+v, want sessions=55 users=41 pageViews=120", last)
	}
	if !last.HasBounceRate || last.BounceRate != 38.0 {
		t.Errorf("bounce = (%v, %v), want (38.0, true)", last.BounceRate, last.HasBounceRate)
	}
	if last.Estimated {
		t.Error("measured point should not be marked estimated")
	}

	gap := series.Points[5]
	if gap.Date != "2026-03-13" || gap.Sessions != 0 || gap.Users != 0 || gap.PageViews != 0 {
		t.Errorf("gap day should be zero-filled, got %+v", gap)
	}

	if source.aggregateHit {
		t.Error("aggregate tier should not run when daily succeeds")
	}
}

func TestReconstructReducedTier(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		dailyErr: &SourceError{StatusCode: 400, Message: "bounceRate is not a valid metric"},
		reducedRows: []DailyRow{
			{Date: "2026-03-14", Sessions: 20, Users: 15, PageViews: 44},
		},
	}
	r := newTestReconstructor(t, source, 0.5)

	series, err := r.Reconstruct(context.Background(), 7)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if series.Source != domain.SeriesSourceDailyReduced {
		t.Fatalf("Source = %q, want %q", series.Source, domain.SeriesSourceDailyReduced)
	}
	for _, p := range series.Points {
		if p.HasBounceRate {
			t.Errorf("reduced tier point %q should not carry a bounce rate", p.Date)
		}
		if p.Estimated {
			t.Errorf("reduced tier point %q should not be marked estimated", p.Date)
		}
	}
}

func TestReconstructSyntheticTier(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		dailyErr:        &SourceError{StatusCode: 429, Message: "quota exceeded"},
		reducedErr:      &SourceError{StatusCode: 429, Message: "quota exceeded"},
		aggregateTotals: &Totals{Sessions: 700, Users: 520, PageViews: 1610, BounceRate: 0.45},
	}
	r := newTestReconstructor(t, source, 0.5)

	series, err := r.Reconstruct(context.Background(), 7)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if series.Source != domain.SeriesSourceEstimate {
		t.Fatalf("Source = %q, want %q", series.Source, domain.SeriesSourceEstimate)
	}
	if len(series.Points) != 7 {
		t.Fatalf("len(Points) = %d, want 7", len(series.Points))
	}
	if series.Points[6].Date != "2026-03-15" {
		t.Errorf("synthetic window should end today, got %q", series.Points[6].Date)
	}

	seen := make(map[string]bool, len(series.Points))
	for i, p := range series.Points {
		if !p.Estimated {
			t.Errorf("point %d should be marked estimated", i)
		}
		if seen[p.Date] {
			t.Errorf("duplicate date %q", p.Date)
		}
		seen[p.Date] = true

		// dailyBase=100; variance spans [0.7,1.3] and recency tops out
		// just under 1.09, so daily sessions stay within [70, 141].
		if p.Sessions < 70 || p.Sessions > 141 {
			t.Errorf("point %d sessions = %d, out of plausible bounds [70,141]", i, p.Sessions)
		}
		if p.Users > p.Sessions {
			t.Errorf("point %d users %d exceeds sessions %d", i, p.Users, p.Sessions)
		}
		if p.PageViews < p.Sessions {
			t.Errorf("point %d pageViews %d below sessions %d", i, p.PageViews, p.Sessions)
		}
		if p.BounceRate < 0 || p.BounceRate > 100 {
			t.Errorf("point %d bounceRate = %v, want within [0,100]", i, p.BounceRate)
		}
	}

	// Recency ramp with fixed variance means later days never dip.
	for i := 1; i < len(series.Points); i++ {
		if series.Points[i].Sessions < series.Points[i-1].Sessions {
			t.Errorf("sessions dipped at index %d with fixed variance: %d then %d",
				i, series.Points[i-1].Sessions, series.Points[i].Sessions)
		}
	}
}

func TestReconstructEmptyAggregate(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		dailyErr:        &SourceError{StatusCode: 503, Message: "unavailable"},
		reducedErr:      &SourceError{StatusCode: 503, Message: "unavailable"},
		aggregateTotals: nil,
	}
	r := newTestReconstructor(t, source, 0.5)

	series, err := r.Reconstruct(context.Background(), 7)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if len(series.Points) != 0 {
		t.Fatalf("len(Points) = %d, want 0", len(series.Points))
	}
	if series.Source != "" {
		t.Errorf("empty series should not carry a source label, got %q", series.Source)
	}
}

func TestReconstructAllTiersFail(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		dailyErr:     &SourceError{StatusCode: 403, Message: "permission denied"},
		reducedErr:   &SourceError{StatusCode: 403, Message: "permission denied"},
		aggregateErr: &SourceError{StatusCode: 403, Message: "permission denied"},
	}
	r := newTestReconstructor(t, source, 0.5)

	if _, err := r.Reconstruct(context.Background(), 7); err == nil {
		t.Fatal("expected error when every tier fails")
	}
}

func TestReconstructRejectsInvalidWindow(t *testing.T) {
	t.Parallel()

	r := newTestReconstructor(t, &fakeSource{}, 0.5)
	if _, err := r.Reconstruct(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero-day window")
	}
}
