package domain

// TimeSeriesSource labels which reconstruction tier produced a series so
// consumers can tell measured data from estimates.
type TimeSeriesSource string

const (
	SeriesSourceDaily        TimeSeriesSource = "daily"
	SeriesSourceDailyReduced TimeSeriesSource = "daily-reduced"
	SeriesSourceEstimate     TimeSeriesSource = "aggregate-estimate"
)

func (s TimeSeriesSource) String() string { return string(s) }

// TimeSeriesPoint is one calendar day of traffic metrics. BounceRate is a
// percentage with one decimal of precision; HasBounceRate is false when
// the reduced-metric tier could not query it.
type TimeSeriesPoint struct {
	Date          string  `json:"date"`
	Sessions      int64   `json:"sessions"`
	Users         int64   `json:"users"`
	PageViews     int64   `json:"pageViews"`
	BounceRate    float64 `json:"bounceRate,omitempty"`
	HasBounceRate bool    `json:"-"`
	Estimated     bool    `json:"estimated,omitempty"`
}

// TimeSeries is a gapless ascending-date window of daily points. An empty
// Points slice means the source had no usable data at all, not zero
// traffic.
type TimeSeries struct {
	Points []TimeSeriesPoint `json:"points"`
	Source TimeSeriesSource  `json:"source,omitempty"`
}

// TrafficTotals are window-wide aggregate metrics.
type TrafficTotals struct {
	Sessions   int64   `json:"sessions"`
	Users      int64   `json:"users"`
	PageViews  int64   `json:"pageViews"`
	BounceRate float64 `json:"bounceRate"`
}

// AnalyticsOverview is the main analytics payload: realtime actives plus
// trailing-window traffic totals. Failed refreshes produce a zeroed
// overview with Success=false and a diagnostic message, never an error.
type AnalyticsOverview struct {
	Success     bool          `json:"success"`
	ActiveUsers int64         `json:"activeUsers"`
	Traffic     TrafficTotals `json:"traffic"`
	WindowDays  int           `json:"windowDays"`
	Message     string        `json:"message,omitempty"`
}
