package analytics

import "context"

// Totals are aggregate metrics for a trailing window. BounceRate is the
// source's raw fraction (0..1).
type Totals struct {
	Sessions   int64
	Users      int64
	PageViews  int64
	BounceRate float64
}

// DailyRow is one per-day row from a daily breakdown query. Date is
// normalized to YYYY-MM-DD. HasBounceRate is false when the reduced
// metric set was queried.
type DailyRow struct {
	Date          string
	Sessions      int64
	Users         int64
	PageViews     int64
	BounceRate    float64
	HasBounceRate bool
}

// Source is the external reporting API port. Implementations return
// (nil/empty, error) on transport or API failure and an empty row slice
// when the window simply has no data.
type Source interface {
	RunAggregate(ctx context.Context, windowDays int) (*Totals, error)
	RunDaily(ctx context.Context, windowDays int, includeBounce bool) ([]DailyRow, error)
	RunRealtime(ctx context.Context) (int64, error)
}
