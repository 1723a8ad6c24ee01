package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultQueryTimeout = 15 * time.Second

// DataClient queries a GA4-style Data API over HTTP.
type DataClient struct {
	client     *resty.Client
	baseURL    string
	propertyID string
}

func NewDataClient(baseURL, token, propertyID string) (*DataClient, error) {
	client := resty.New()
	client.SetTimeout(defaultQueryTimeout)
	client.SetRetryCount(0)
	client.SetAuthToken(token)

	return NewDataClientWithClient(baseURL, propertyID, client)
}

func NewDataClientWithClient(baseURL, propertyID string, client *resty.Client) (*DataClient, error) {
	trimmedBase := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBase == "" {
		return nil, fmt.Errorf("analytics api base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBase); err != nil {
		return nil, fmt.Errorf("invalid analytics api base url: %w", err)
	}
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("analytics property id is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultQueryTimeout)
	}
	client.SetRetryCount(0)

	return &DataClient{
		client:     client,
		baseURL:    trimmedBase,
		propertyID: strings.TrimSpace(propertyID),
	}, nil
}

var _ Source = (*DataClient)(nil)

type reportRequest struct {
	DateRanges    []dateRange  `json:"dateRanges,omitempty"`
	Dimensions    []namedField `json:"dimensions,omitempty"`
	Metrics       []namedField `json:"metrics"`
	OrderBys      []orderBy    `json:"orderBys,omitempty"`
	KeepEmptyRows bool         `json:"keepEmptyRows,omitempty"`
	Limit         int          `json:"limit,omitempty"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type namedField struct {
	Name string `json:"name"`
}

type orderBy struct {
	Dimension *dimensionOrder `json:"dimension,omitempty"`
}

type dimensionOrder struct {
	DimensionName string `json:"dimensionName"`
}

type reportResponse struct {
	Rows []reportRow `json:"rows"`
}

type reportRow struct {
	DimensionValues []reportValue `json:"dimensionValues"`
	MetricValues    []reportValue `json:"metricValues"`
}

type reportValue struct {
	Value string `json:"value"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *DataClient) RunAggregate(ctx context.Context, windowDays int) (*Totals, error) {
	resp, err := c.runReport(ctx, reportRequest{
		DateRanges: []dateRange{{StartDate: relativeStart(windowDays), EndDate: "today"}},
		Metrics: []namedField{
			{Name: "sessions"},
			{Name: "totalUsers"},
			{Name: "screenPageViews"},
			{Name: "bounceRate"},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}

	values := resp.Rows[0].MetricValues
	return &Totals{
		Sessions:   metricInt(values, 0),
		Users:      metricInt(values, 1),
		PageViews:  metricInt(values, 2),
		BounceRate: metricFloat(values, 3),
	}, nil
}

func (c *DataClient) RunDaily(ctx context.Context, windowDays int, includeBounce bool) ([]DailyRow, error) {
	metrics := []namedField{
		{Name: "sessions"},
		{Name: "totalUsers"},
		{Name: "screenPageViews"},
	}
	if includeBounce {
		metrics = append(metrics, namedField{Name: "bounceRate"})
	}

	resp, err := c.runReport(ctx, reportRequest{
		DateRanges:    []dateRange{{StartDate: relativeStart(windowDays), EndDate: "yesterday"}},
		Dimensions:    []namedField{{Name: "date"}},
		Metrics:       metrics,
		OrderBys:      []orderBy{{Dimension: &dimensionOrder{DimensionName: "date"}}},
		KeepEmptyRows: true,
		Limit:         windowDays,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]DailyRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 {
			continue
		}

		r := DailyRow{
			Date:          normalizeDate(row.DimensionValues[0].Value),
			Sessions:      metricInt(row.MetricValues, 0),
			Users:         metricInt(row.MetricValues, 1),
			PageViews:     metricInt(row.MetricValues, 2),
			HasBounceRate: includeBounce,
		}
		if includeBounce {
			r.BounceRate = metricFloat(row.MetricValues, 3)
		}
		rows = append(rows, r)
	}

	return rows, nil
}

func (c *DataClient) RunRealtime(ctx context.Context) (int64, error) {
	resp, err := c.post(ctx, c.reportURL("runRealtimeReport"), reportRequest{
		Metrics: []namedField{{Name: "activeUsers"}},
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Rows) == 0 {
		return 0, nil
	}
	return metricInt(resp.Rows[0].MetricValues, 0), nil
}

func (c *DataClient) runReport(ctx context.Context, req reportRequest) (*reportResponse, error) {
	return c.post(ctx, c.reportURL("runReport"), req)
}

func (c *DataClient) reportURL(method string) string {
	return fmt.Sprintf("%s/v1beta/properties/%s:%s", c.baseURL, c.propertyID, method)
}

func (c *DataClient) post(ctx context.Context, reportURL string, req reportRequest) (*reportResponse, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("analytics client is not initialized")
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(reportURL)
	if err != nil {
		return nil, &SourceError{
			Message: "analytics request failed",
			Cause:   err,
		}
	}

	statusCode := response.StatusCode()
	body := response.Body()

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		apiErr := &SourceError{StatusCode: statusCode}
		var parsed apiErrorResponse
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
			apiErr.Status = parsed.Error.Status
			apiErr.Message = parsed.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	var parsed reportResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &SourceError{
			Message: "failed to decode analytics response",
			Cause:   err,
		}
	}

	return &parsed, nil
}

func relativeStart(windowDays int) string {
	if windowDays < 1 {
		windowDays = 1
	}
	return fmt.Sprintf("%ddaysAgo", windowDays)
}

func metricInt(values []reportValue, idx int) int64 {
	if idx >= len(values) {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(values[idx].Value), 10, 64)
	if err != nil {
		// Some metrics come back as decimals even when integral.
		f, ferr := strconv.ParseFloat(strings.TrimSpace(values[idx].Value), 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return v
}

func metricFloat(values []reportValue, idx int) float64 {
	if idx >= len(values) {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(values[idx].Value), 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeDate converts the API's compact YYYYMMDD dimension value to
// YYYY-MM-DD; already-normalized values pass through.
func normalizeDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse("20060102", trimmed); err == nil {
		return t.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", trimmed); err == nil {
		return trimmed
	}
	return trimmed
}
