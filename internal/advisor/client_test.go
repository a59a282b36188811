package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"etf-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testRequest() domain.AdvisorRequest {
	return domain.AdvisorRequest{
		Preferences: domain.PortfolioPreference{
			Goal:              domain.GoalRetirement,
			RiskProfile:       domain.RiskModerate,
			InvestmentHorizon: domain.HorizonLongTerm,
			Currency:          domain.CurrencyUSD,
			StockExchange:     domain.ExchangeNYSE,
			InitialInvestment: 10000,
		},
		InvestmentModel: "gpt-4o-mini",
		PortfolioModel:  "gpt-4o-mini",
		AnalystModel:    "gpt-4o-mini",
	}
}

func TestListModels(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/models" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]domain.LLMModel{
			{Provider: "openai", ModelName: "gpt-4o-mini", DisplayName: "GPT-4o mini"},
			{Provider: "static", ModelName: "reference", DisplayName: "Reference"},
		})
	}))
	defer srv.Close()

	models, err := NewClient(srv.URL+"/api/", testTracer).ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].ModelName != "gpt-4o-mini" || models[1].Provider != "static" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestListModelsEmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	models, err := NewClient(srv.URL, testTracer).ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if models == nil || len(models) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", models)
	}
}

func TestListModelsTransportFailure(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	_, err := NewClient("http://example", testTracer, WithHTTPClient(hc)).ListModels(context.Background())
	if !IsServiceUnavailable(err) {
		t.Fatalf("expected ServiceUnavailable, got %v", err)
	}
	if IsTimeout(err) {
		t.Fatal("connection refusal is not a timeout")
	}
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	health, err := NewClient(srv.URL, testTracer).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestCheckHealthFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testTracer).CheckHealth(context.Background())
	if !IsServiceUnavailable(err) {
		t.Fatalf("expected ServiceUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", calls.Load())
	}
}

func TestRunAnalysisSendsRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing content type")
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		var req domain.AdvisorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Preferences.Goal != domain.GoalRetirement || req.AnalystModel != "gpt-4o-mini" {
			t.Errorf("unexpected body: %+v", req)
		}
		_, _ = w.Write([]byte(`{
			"portfolio": {"name": "P", "holdings": [{"symbol": "VTI", "weight": 40}], "strategy": {"name": "S", "asset_allocation": {"stocks_percentage": 60}}},
			"analysis": {"summary": {"is_approved": true, "weeknesses": "fees"}}
		}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, testTracer, WithAPIKey("secret")).RunAnalysis(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Analysis.Summary.IsApproved || result.Analysis.Summary.Weaknesses != "fees" {
		t.Fatalf("unexpected summary: %+v", result.Analysis.Summary)
	}
	if len(result.Portfolio.Holdings) != 1 || *result.Portfolio.Strategy.AssetAllocation.StocksPercentage != 60 {
		t.Fatalf("unexpected portfolio: %+v", result.Portfolio)
	}
}

func TestRunAnalysisClassifiesStatus(t *testing.T) {
	tests := []struct {
		status      int
		body        string
		invalid     bool
		unavailable bool
		timedOut    bool
	}{
		{http.StatusBadRequest, `{"error":"unknown model: x"}`, true, false, false},
		{http.StatusUnprocessableEntity, `bad`, true, false, false},
		{http.StatusTooManyRequests, ``, false, true, false},
		{http.StatusRequestTimeout, ``, false, true, true},
		{http.StatusBadGateway, `{"error":"llm down"}`, false, true, false},
		{http.StatusGatewayTimeout, ``, false, true, true},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := NewClient(srv.URL, testTracer).RunAnalysis(context.Background(), testRequest())
		srv.Close()

		if IsInvalidRequest(err) != tc.invalid || IsServiceUnavailable(err) != tc.unavailable || IsTimeout(err) != tc.timedOut {
			t.Fatalf("status %d: unexpected classification for %v", tc.status, err)
		}
	}
}

func TestRunAnalysisInvalidRequestMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown model: x"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testTracer).RunAnalysis(context.Background(), testRequest())
	var invalid *InvalidRequestError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}
	if invalid.Message != "unknown model: x" || invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error fields: %+v", invalid)
	}
}

func TestRunAnalysisTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, testTracer, WithTimeout(20*time.Millisecond)).RunAnalysis(context.Background(), testRequest())
	if !IsTimeout(err) {
		t.Fatalf("expected timed-out ServiceUnavailable, got %v", err)
	}
}

func TestRunAnalysisCancelledContext(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://example", testTracer, WithHTTPClient(hc)).RunAnalysis(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsServiceUnavailable(err) {
		t.Fatal("cancellation must not be reported as ServiceUnavailable")
	}
}

func TestRunAnalysisMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"portfolio":`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, testTracer).RunAnalysis(context.Background(), testRequest())
	if !IsServiceUnavailable(err) {
		t.Fatalf("expected ServiceUnavailable for malformed body, got %v", err)
	}
}

func TestRunAnalysisEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, testTracer).RunAnalysis(context.Background(), testRequest())
	if !IsServiceUnavailable(err) {
		t.Fatalf("expected ServiceUnavailable for empty body, got %v (result %+v)", err, result)
	}
	if len(result.Portfolio.Holdings) != 0 {
		t.Fatalf("expected zero result on error, got %+v", result)
	}
}

func TestCheckHealthEmptyBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "{}"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewClient(srv.URL, testTracer).CheckHealth(context.Background())
		srv.Close()
		if !IsServiceUnavailable(err) {
			t.Fatalf("body %q: expected ServiceUnavailable, got %v", body, err)
		}
	}
}

func TestListModelsEmptyBodyIsEmptyCatalog(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	models, err := NewClient(srv.URL, testTracer).ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if models == nil || len(models) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", models)
	}
}

func TestWithTimeoutCopiesClient(t *testing.T) {
	t.Parallel()

	shared := &http.Client{}
	c := NewClient("http://example", testTracer, WithHTTPClient(shared), WithTimeout(3*time.Second))
	if shared.Timeout != 0 {
		t.Fatalf("shared client mutated: %v", shared.Timeout)
	}
	if c.client.Timeout != 3*time.Second {
		t.Fatalf("expected timeout on client copy, got %v", c.client.Timeout)
	}

	c = NewClient("http://example", testTracer, WithHTTPClient(nil), WithTimeout(time.Second))
	if c.client == nil || c.client.Timeout != time.Second {
		t.Fatalf("nil client should be ignored, got %+v", c.client)
	}
}

func TestUserMessage(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Fatal("nil error should map to empty message")
	}
	if msg := UserMessage(&InvalidRequestError{StatusCode: 400}); msg == "" || msg == UserMessage(&ServiceUnavailableError{}) {
		t.Fatalf("invalid request and unavailable should differ: %q", msg)
	}
	if msg := UserMessage(&ServiceUnavailableError{TimedOut: true}); msg != "The advisor took too long to respond. Please try again later." {
		t.Fatalf("unexpected timeout message: %q", msg)
	}
}
