package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDataClientRunDaily(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotRequest map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{
					"dimensionValues": [{"value": "20260310"}],
					"metricValues": [{"value": "42"}, {"value": "31"}, {"value": "97"}, {"value": "0.412"}]
				},
				{
					"dimensionValues": [{"value": "20260311"}],
					"metricValues": [{"value": "55"}, {"value": "40"}, {"value": "120"}, {"value": "0.385"}]
				}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	rows, err := client.RunDaily(context.Background(), 7, true)
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}

	if gotPath != "/v1beta/properties/123456:runReport" {
		t.Errorf("request path = %q, want /v1beta/properties/123456:runReport", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if _, ok := gotRequest["dimensions"]; !ok {
		t.Error("daily request should carry a date dimension")
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	first := rows[0]
	if first.Date != "2026-03-10" {
		t.Errorf("Date = %q, want 2026-03-10", first.Date)
	}
	if first.Sessions != 42 || first.Users != 31 || first.PageViews != 97 {
		t.Errorf("row = %+v, want sessions=42 users=31 pageViews=97", first)
	}
	if !first.HasBounceRate || first.BounceRate != 0.412 {
		t.Errorf("bounce = (%v, %v), want (0.412, true)", first.BounceRate, first.HasBounceRate)
	}
}

func TestDataClientRunDailyReducedOmitsBounce(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Metrics []struct {
				Name string `json:"name"`
			} `json:"metrics"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Metrics {
			if m.Name == "bounceRate" {
				t.Error("reduced query should not request bounceRate")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{"dimensionValues": [{"value": "20260311"}], "metricValues": [{"value": "10"}, {"value": "8"}, {"value": "23"}]}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	rows, err := client.RunDaily(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].HasBounceRate {
		t.Error("reduced rows should not carry a bounce rate")
	}
}

func TestDataClientRunAggregate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{"metricValues": [{"value": "700"}, {"value": "523"}, {"value": "1612"}, {"value": "0.45"}]}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	totals, err := client.RunAggregate(context.Background(), 7)
	if err != nil {
		t.Fatalf("RunAggregate() error = %v", err)
	}
	if totals == nil {
		t.Fatal("expected totals for non-empty response")
	}
	if totals.Sessions != 700 || totals.Users != 523 || totals.PageViews != 1612 {
		t.Errorf("totals = %+v, want sessions=700 users=523 pageViews=1612", totals)
	}
	if totals.BounceRate != 0.45 {
		t.Errorf("BounceRate = %v, want 0.45", totals.BounceRate)
	}
}

func TestDataClientRunAggregateEmptyWindow(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": []}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	totals, err := client.RunAggregate(context.Background(), 7)
	if err != nil {
		t.Fatalf("RunAggregate() error = %v", err)
	}
	if totals != nil {
		t.Fatalf("totals = %+v, want nil for empty window", totals)
	}
}

func TestDataClientRunRealtime(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": [{"metricValues": [{"value": "17"}]}]}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	active, err := client.RunRealtime(context.Background())
	if err != nil {
		t.Fatalf("RunRealtime() error = %v", err)
	}
	if active != 17 {
		t.Errorf("active users = %d, want 17", active)
	}
	if gotPath != "/v1beta/properties/123456:runRealtimeReport" {
		t.Errorf("request path = %q, want /v1beta/properties/123456:runRealtimeReport", gotPath)
	}
}

func TestDataClientAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Exhausted property tokens", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client, err := NewDataClient(server.URL, "test-token", "123456")
	if err != nil {
		t.Fatalf("NewDataClient() error = %v", err)
	}

	_, err = client.RunAggregate(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error type = %T, want *SourceError", err)
	}
	if srcErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", srcErr.StatusCode)
	}
	if srcErr.Status != "RESOURCE_EXHAUSTED" {
		t.Errorf("Status = %q, want RESOURCE_EXHAUSTED", srcErr.Status)
	}
	if Classify(err) != CauseRateLimit {
		t.Errorf("Classify() = %q, want %q", Classify(err), CauseRateLimit)
	}
}

func TestNewDataClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewDataClient("", "token", "123"); err == nil {
		t.Error("expected error for empty base url")
	}
	if _, err := NewDataClient("https://example.com", "token", ""); err == nil {
		t.Error("expected error for empty property id")
	}
	if _, err := NewDataClientWithClient("https://example.com", "123", nil); err == nil {
		t.Error("expected error for nil client")
	}
}
