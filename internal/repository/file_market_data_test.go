package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
)

func TestDecodeCandles_Formats(t *testing.T) {
	rows := `[[1704070800000, 2, 3, 1, 2.5, 10], [1704067200000, 1, 2, 0.5, 1.5]]`
	got, err := DecodeCandles(strings.NewReader(rows))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Close != 1.5 || got[1].Volume != 10 {
		t.Fatalf("rows decoded as %+v", got)
	}
	if !got[0].Bucket.Before(got[1].Bucket) {
		t.Fatal("rows not sorted by time")
	}

	objs := `[{"bucket":"2024-01-01T00:00:00Z","open":1,"high":2,"low":0.5,"close":1.5,"volume":7}]`
	got, err = DecodeCandles(strings.NewReader(objs))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Volume != 7 {
		t.Fatalf("objects decoded as %+v", got)
	}

	if _, err := DecodeCandles(strings.NewReader(`[[1, 2, 3]]`)); err == nil {
		t.Fatal("short row should fail")
	}
}

func TestWindow(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var cs []models.Candle
	for i := 0; i < 48; i++ {
		cs = append(cs, models.Candle{Bucket: t0.Add(time.Duration(i) * time.Hour), Close: float64(i)})
	}
	got := Window(cs, 24*time.Hour)
	if len(got) != 25 || got[0].Close != 23 {
		t.Fatalf("window len=%d first=%v", len(got), got[0].Close)
	}
	if len(Window(cs, 0)) != 48 {
		t.Fatal("zero span should keep everything")
	}
}

func TestBetween(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var cs []models.Candle
	for i := 0; i < 10; i++ {
		cs = append(cs, models.Candle{Bucket: t0.Add(time.Duration(i) * time.Hour)})
	}
	if got := Between(cs, t0.Add(2*time.Hour), t0.Add(4*time.Hour)); len(got) != 3 {
		t.Fatalf("closed range len %d", len(got))
	}
	if got := Between(cs, time.Time{}, t0.Add(time.Hour)); len(got) != 2 {
		t.Fatalf("open start len %d", len(got))
	}
	if got := Between(cs, t0.Add(20*time.Hour), time.Time{}); len(got) != 0 {
		t.Fatalf("past end len %d", len(got))
	}
}

func TestFileMarketData_Fetch(t *testing.T) {
	dir := t.TempDir()
	body := `[[1704067200000, 1, 2, 0.5, 1.5, 3], [1704070800000, 2, 3, 1, 2.5, 4]]`
	if err := os.WriteFile(filepath.Join(dir, "bitcoin.json"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	p := NewFileMarketData(dir, nil)
	ctx := context.Background()

	got, err := p.Fetch(ctx, "bitcoin", domrepo.TF7d)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Symbol != "bitcoin" {
		t.Fatalf("fetch %+v", got)
	}

	got, err = p.Fetch(ctx, "ethereum", domrepo.TF7d)
	if err != nil || len(got) != 0 {
		t.Fatalf("missing coin should be empty, got %v %v", got, err)
	}
	if _, err := p.Fetch(ctx, "../etc", domrepo.TF7d); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("path traversal err %v", err)
	}
	if _, err := p.Fetch(ctx, "bitcoin", domrepo.Timeframe("5m")); !errors.Is(err, models.ErrUnsupportedTimeframe) {
		t.Fatalf("bad tf err %v", err)
	}
}

func TestFileMarketData_Health(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileMarketData(dir, nil).Health(context.Background()); err != nil {
		t.Fatalf("existing dir: %v", err)
	}
	if err := NewFileMarketData(filepath.Join(dir, "missing"), nil).Health(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing dir: %v", err)
	}
	file := filepath.Join(dir, "btc.json")
	if err := os.WriteFile(file, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewFileMarketData(file, nil).Health(context.Background()); err == nil {
		t.Fatal("expected error for a plain file")
	}
}
