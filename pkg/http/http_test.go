package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleRequest struct {
	Coin      string   `query:"coin" json:"coin" validate:"required,max=8"`
	Timeframe string   `query:"tf" json:"tf" default:"7d" validate:"oneof=1h 24h 7d 30d"`
	Methods   []string `json:"methods" validate:"omitempty,dive,oneof='Technical Analysis' 'Momentum Model'"`
}

func bind(t *testing.T, method, target, body string) (sampleRequest, []ValidationError) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	var r sampleRequest
	errs := ReadAndValidateRequest(c, &r)
	return r, errs
}

func TestReadAndValidateRequest_Defaults(t *testing.T) {
	r, errs := bind(t, http.MethodGet, "/?coin=btc", "")
	if errs != nil {
		t.Fatalf("unexpected errors %+v", errs)
	}
	if r.Timeframe != "7d" {
		t.Fatalf("default timeframe not applied: %q", r.Timeframe)
	}
}

func TestReadAndValidateRequest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   string
		field  string
	}{
		{"missing coin", http.MethodGet, "/?tf=1h", "", "ERR_REQUIRED", "coin"},
		{"bad timeframe", http.MethodGet, "/?coin=btc&tf=5m", "", "ERR_ONEOF", "tf"},
		{"coin too long", http.MethodGet, "/?coin=averyverylongcoin", "", "ERR_MAX", "coin"},
		{"bad method", http.MethodPost, "/", `{"coin":"btc","methods":["Astrology"]}`, "ERR_ONEOF", "methods[0]"},
		{"malformed body", http.MethodPost, "/", `{"coin":`, "ERR_BIND", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := bind(t, tt.method, tt.target, tt.body)
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if errs[0].Code != tt.code || errs[0].Field != tt.field {
				t.Fatalf("got %s/%s, want %s/%s", errs[0].Code, errs[0].Field, tt.code, tt.field)
			}
		})
	}
}

func TestOneOfOptions(t *testing.T) {
	got := oneOfOptions("'Technical Analysis' 'Momentum Model' plain")
	want := []string{"Technical Analysis", "Momentum Model", "plain"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q", got)
	}
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", BadRequestError("nope").WithError(errors.New("cause")), http.StatusBadRequest},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := AppErrorResponse(c, tt.err); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d", rec.Code, tt.status)
			}
			var body APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.status {
				t.Fatalf("envelope status %d", body.Status)
			}
		})
	}
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
}

func TestServer_RateLimitOnlyAPI(t *testing.T) {
	var limited []string
	s := NewServer(ServerConfig{}, pingHandler{}, nil,
		WithRateLimiter(denyAll{}, func(route string) { limited = append(limited, route) }))

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
	if len(limited) != 1 || limited[0] != "/api/ping" {
		t.Fatalf("limited routes %v", limited)
	}

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
}

func TestServer_HealthChecks(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		opts   []ServerOption
		status int
		body   map[string]string
	}{
		{"no checks", nil, http.StatusOK, map[string]string{"status": "ok"}},
		{"healthy", []ServerOption{WithHealthCheck("market_data", up)}, http.StatusOK,
			map[string]string{"status": "ok", "market_data": "ok"}},
		{"failing", []ServerOption{WithHealthCheck("market_data", down), WithHealthCheck("cache", up)},
			http.StatusServiceUnavailable,
			map[string]string{"status": "degraded", "market_data": "connection refused", "cache": "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(ServerConfig{}, nil, nil, tt.opts...)
			rec := httptest.NewRecorder()
			s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d", rec.Code, tt.status)
			}
			var resp struct {
				Data map[string]string `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			for k, want := range tt.body {
				if resp.Data[k] != want {
					t.Errorf("%s=%q, want %q", k, resp.Data[k], want)
				}
			}
		})
	}
}
