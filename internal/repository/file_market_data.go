package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	applogger "CryptoSignal/pkg/logger"
)

// FileMarketData serves candles from <dir>/<coin>.json. Records are used at
// their stored resolution, windowed to the timeframe span ending at the
// newest record.
type FileMarketData struct {
	dir string
	l   *applogger.Logger
}

func NewFileMarketData(dir string, l *applogger.Logger) *FileMarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &FileMarketData{dir: dir, l: l}
}

var _ domrepo.HealthChecker = (*FileMarketData)(nil)

// Health reports whether the candle directory is readable.
func (s *FileMarketData) Health(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("candle dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("candle dir %q is not a directory", s.dir)
	}
	return nil
}

func (s *FileMarketData) Fetch(_ context.Context, coinID string, tf domrepo.Timeframe) ([]models.Candle, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedTimeframe, tf)
	}
	if coinID == "" || strings.ContainsAny(coinID, `/\`) || strings.Contains(coinID, "..") {
		return nil, fmt.Errorf("coin %q: %w", coinID, models.ErrInvalidParameter)
	}
	path := filepath.Join(s.dir, coinID+".json")
	candles, err := LoadCandles(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.l.Debug("no candle file", applogger.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := Window(candles, tf.Span())
	for i := range out {
		if out[i].Symbol == "" {
			out[i].Symbol = coinID
		}
	}
	return out, nil
}

// LoadCandles reads a JSON candle file.
func LoadCandles(path string) ([]models.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles: %w", err)
	}
	defer f.Close()
	candles, err := DecodeCandles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}

// DecodeCandles accepts an array of candle objects or an array of
// [unix_ms, open, high, low, close(, volume)] rows and returns the candles
// sorted by time.
func DecodeCandles(r io.Reader) ([]models.Candle, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	out := make([]models.Candle, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		var c models.Candle
		if len(item) > 0 && item[0] == '[' {
			var row []float64
			if err := json.Unmarshal(item, &row); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if len(row) < 5 {
				return nil, fmt.Errorf("row %d: want at least 5 columns, got %d", i, len(row))
			}
			c = models.Candle{
				Bucket: time.UnixMilli(int64(row[0])).UTC(),
				Open:   row[1],
				High:   row[2],
				Low:    row[3],
				Close:  row[4],
			}
			if len(row) > 5 {
				c.Volume = row[5]
			}
		} else if err := json.Unmarshal(item, &c); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bucket.Before(out[j].Bucket) })
	return out, nil
}

// Window keeps the candles within span of the newest one. Input must be
// sorted. A zero span keeps everything.
func Window(candles []models.Candle, span time.Duration) []models.Candle {
	if len(candles) == 0 || span <= 0 {
		return candles
	}
	from := candles[len(candles)-1].Bucket.Add(-span)
	i := sort.Search(len(candles), func(i int) bool { return !candles[i].Bucket.Before(from) })
	return candles[i:]
}

// Between keeps candles with from <= bucket <= to. Zero bounds are open.
// Input must be sorted.
func Between(candles []models.Candle, from, to time.Time) []models.Candle {
	lo, hi := 0, len(candles)
	if !from.IsZero() {
		lo = sort.Search(len(candles), func(i int) bool { return !candles[i].Bucket.Before(from) })
	}
	if !to.IsZero() {
		hi = sort.Search(len(candles), func(i int) bool { return candles[i].Bucket.After(to) })
	}
	if lo >= hi {
		return nil
	}
	return candles[lo:hi]
}

// StaticMarketData serves one fixed candle series for every coin and
// timeframe.
type StaticMarketData []models.Candle

func (s StaticMarketData) Fetch(context.Context, string, domrepo.Timeframe) ([]models.Candle, error) {
	return s, nil
}
