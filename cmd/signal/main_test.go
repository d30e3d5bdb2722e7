package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgch "CryptoSignal/pkg/clickhouse"
)

func writeSeries(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		c := 100 + 3*math.Sin(float64(i)/5) + float64(i)*0.05
		fmt.Fprintf(&b, "[%d,%f,%f,%f,%f,%d]", 1704067200000+int64(i)*3600000, c-0.2, c+1, c-1, c, 100+i%17)
	}
	b.WriteString("]")
	path := filepath.Join(t.TempDir(), "bitcoin.json")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Modes(t *testing.T) {
	path := writeSeries(t, 120)
	tests := []struct {
		mode string
		key  string
	}{
		{"analyze", "recommendation"},
		{"predict", "predictions"},
		{"indicators", "indicators"},
		{"insights", "rsi_value"},
		{"advice", "consensus"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), options{mode: tt.mode, file: path, timeframe: "30d"}, &out); err != nil {
				t.Fatal(err)
			}
			var got map[string]any
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if _, ok := got[tt.key]; !ok {
				t.Fatalf("missing %q in %s output", tt.key, tt.mode)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	path := writeSeries(t, 30)
	if err := run(context.Background(), options{mode: "analyze"}, &bytes.Buffer{}); err == nil {
		t.Fatal("missing file should fail")
	}
	if err := run(context.Background(), options{mode: "analyze", file: path, since: "2024-02-01", until: "2024-01-01"}, &bytes.Buffer{}); err == nil {
		t.Fatal("inverted range should fail")
	}
	if err := run(context.Background(), options{mode: "bogus", file: path, timeframe: "7d"}, &bytes.Buffer{}); err == nil {
		t.Fatal("unknown mode should fail")
	}
}

func TestRun_SinceFiltersCandles(t *testing.T) {
	path := writeSeries(t, 48)
	var out bytes.Buffer
	// The series starts 2024-01-01T00:00Z hourly; keep the last 10 bars.
	o := options{mode: "insights", file: path, timeframe: "30d", since: "2024-01-02T14:00:00Z"}
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["data_points"].(float64) != 10 {
		t.Fatalf("data_points=%v, want 10", got["data_points"])
	}
}

func TestClickhouseOptions(t *testing.T) {
	getenv := func(k string) string {
		if k == "CLICKHOUSE_PASSWORD" {
			return "secret"
		}
		return ""
	}
	opts, err := clickhouseOptions(options{
		chAddr: "ch.local:8123", chDatabase: "market", chUser: "loader", chHTTP: true,
	}, getenv)
	if err != nil {
		t.Fatal(err)
	}
	cfg := pkgch.Config{Host: "localhost", Port: 9000, Database: "cryptosignal", User: "default"}
	for _, opt := range opts {
		opt(&cfg)
	}
	want := pkgch.Config{Host: "ch.local", Port: 8123, Database: "market", User: "loader", Password: "secret", UseHTTP: true}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}

	if opts, err := clickhouseOptions(options{}, getenv); err != nil || len(opts) != 0 {
		t.Fatalf("no flags: %d opts, err %v", len(opts), err)
	}
	for _, addr := range []string{"nohost", "ch:port", "ch:0"} {
		if _, err := clickhouseOptions(options{chAddr: addr}, getenv); err == nil {
			t.Errorf("%s: expected error", addr)
		}
	}
}
