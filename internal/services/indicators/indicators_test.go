package indicators

import (
	"math"
	"testing"

	"CryptoSignal/internal/domain/models"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func assertSeries(t *testing.T, label string, got models.Series, want []*float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len=%d, want %d", label, len(got), len(want))
	}
	for i := range want {
		if want[i] == nil {
			if got[i].Valid {
				t.Errorf("%s[%d]: got %.6f, want undefined", label, i, got[i].V)
			}
			continue
		}
		if !got[i].Valid {
			t.Errorf("%s[%d]: undefined, want %.6f", label, i, *want[i])
			continue
		}
		assertClose(t, label, got[i].V, *want[i], 1e-6)
	}
}

func f(v float64) *float64 { return &v }

// oscillating returns a zig-zag series starting 100,102,104,103,101,99,98,100,103,106.
func oscillating(n int) []float64 {
	base := []float64{100, 102, 104, 103, 101, 99, 98, 100, 103, 106}
	out := make([]float64, n)
	for i := range out {
		out[i] = base[i%len(base)] + float64(i/len(base))*2
	}
	return out
}

func TestMovingAverage_Period3(t *testing.T) {
	// (100+102+104)/3 = 102, (102+104+103)/3 = 103, (104+103+105)/3 = 104
	got := MovingAverage([]float64{100, 102, 104, 103, 105}, 3)
	assertSeries(t, "MA(3)", got, []*float64{nil, nil, f(102), f(103), f(104)})
}

func TestMovingAverage_LengthInvariant(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		window  int
		leading int
	}{
		{"short", 5, 14, 5},
		{"exact", 14, 14, 13},
		{"long", 40, 14, 13},
		{"window one", 6, 1, 0},
		{"empty", 0, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(oscillating(tt.n), tt.window)
			if len(got) != tt.n {
				t.Fatalf("len=%d, want %d", len(got), tt.n)
			}
			if l := got.LeadingInvalid(); l != tt.leading {
				t.Errorf("leading undefined=%d, want %d", l, tt.leading)
			}
		})
	}
}

func TestMovingAverage_NonPositiveWindow(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3}, 0)
	if got.LeadingInvalid() != 3 {
		t.Errorf("expected all undefined for window 0")
	}
}

func TestEMA_Period3(t *testing.T) {
	// seed (100+102+104)/3 = 102, alpha = 0.5
	// 0.5*103 + 0.5*102 = 102.5, 0.5*105 + 0.5*102.5 = 103.75
	got := EMA([]float64{100, 102, 104, 103, 105}, 3)
	assertSeries(t, "EMA(3)", got, []*float64{nil, nil, f(102), f(102.5), f(103.75)})
}

func TestRSI_HandCalculated(t *testing.T) {
	// window 100,102,104,103: gains 2,2 losses 1 over 3 deltas -> rs 4 -> 80
	// window 102,104,103,105: gains 2,2 losses 1 -> 80
	got := RSI([]float64{100, 102, 104, 103, 105}, 3)
	assertSeries(t, "RSI(3)", got, []*float64{nil, nil, nil, f(80), f(80)})
}

func TestRSI_NonDecreasingIs100(t *testing.T) {
	prices := []float64{1, 2, 2, 3, 5, 5, 8, 9, 9, 10, 11, 12, 12, 13, 14, 15, 15}
	got := RSI(prices, 14)
	for i, v := range got {
		if !v.Valid {
			continue
		}
		if v.V != 100 {
			t.Errorf("RSI[%d]=%f, want 100", i, v.V)
		}
	}
	if got.LeadingInvalid() != 14 {
		t.Errorf("leading undefined=%d, want 14", got.LeadingInvalid())
	}
}

func TestRSI_Bounds(t *testing.T) {
	prices := oscillating(120)
	for i, v := range RSI(prices, 14) {
		if v.Valid && (v.V < 0 || v.V > 100) {
			t.Errorf("RSI[%d]=%f out of [0,100]", i, v.V)
		}
	}
	falling := []float64{20, 19, 18, 17, 16, 15}
	assertClose(t, "all losses", RSI(falling, 3).Last().V, 0, 1e-9)
}

func TestRSI_ShortInput(t *testing.T) {
	got := RSI([]float64{1, 2, 3}, 14)
	if len(got) != 3 || got.LeadingInvalid() != 3 {
		t.Errorf("expected 3 undefined points, got %v", got)
	}
}

func TestBollinger_Values(t *testing.T) {
	// mean 2, population std sqrt(2/3)
	b := Bollinger([]float64{1, 2, 3}, 3, 2)
	std := math.Sqrt(2.0 / 3.0)
	assertClose(t, "middle", b.Middle.Last().V, 2, 1e-9)
	assertClose(t, "upper", b.Upper.Last().V, 2+2*std, 1e-9)
	assertClose(t, "lower", b.Lower.Last().V, 2-2*std, 1e-9)
	if b.Middle.LeadingInvalid() != 2 {
		t.Errorf("leading undefined=%d, want 2", b.Middle.LeadingInvalid())
	}
}

func TestBollinger_Ordering(t *testing.T) {
	b := Bollinger(oscillating(80), DefaultBollingerWindow, DefaultBollingerStdDev)
	for i := range b.Middle {
		if !b.Middle[i].Valid {
			continue
		}
		if b.Lower[i].V > b.Middle[i].V || b.Middle[i].V > b.Upper[i].V {
			t.Errorf("band order broken at %d: %f %f %f", i, b.Lower[i].V, b.Middle[i].V, b.Upper[i].V)
		}
	}
}

func TestMACD_ShortSeriesUndefined(t *testing.T) {
	res := MACD(oscillating(25), 12, 26, 9)
	for _, s := range []models.Series{res.Line, res.Signal, res.Histogram} {
		if len(s) != 25 || s.LeadingInvalid() != 25 {
			t.Fatalf("expected 25 undefined points")
		}
	}
}

func TestMACD_SmallPeriods(t *testing.T) {
	// EMA(2): 1.5, 2.5, 3.5, 4.5; EMA(3): 2, 3, 4 -> line 0.5 from index 2
	// signal EMA(2) of [0.5, 0.5, 0.5] aligned right -> defined from index 3
	res := MACD([]float64{1, 2, 3, 4, 5}, 2, 3, 2)
	assertSeries(t, "line", res.Line, []*float64{nil, nil, f(0.5), f(0.5), f(0.5)})
	assertSeries(t, "signal", res.Signal, []*float64{nil, nil, nil, f(0.5), f(0.5)})
	assertSeries(t, "histogram", res.Histogram, []*float64{nil, nil, nil, f(0), f(0)})
}

func TestMACD_DefaultAlignment(t *testing.T) {
	n := 60
	res := MACD(oscillating(n), DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	if l := res.Line.LeadingInvalid(); l != DefaultMACDSlow-1 {
		t.Errorf("line leading=%d, want %d", l, DefaultMACDSlow-1)
	}
	if l := res.Signal.LeadingInvalid(); l != DefaultMACDSlow-1+DefaultMACDSignal-1 {
		t.Errorf("signal leading=%d, want %d", l, DefaultMACDSlow+DefaultMACDSignal-2)
	}
	if !res.Histogram.Last().Valid {
		t.Errorf("histogram should be defined at the end")
	}
}

func flatCandles(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{Open: price, High: price, Low: price, Close: price, Volume: 1}
	}
	return out
}

func TestStochastic_FlatWindowIs50(t *testing.T) {
	res := Stochastic(flatCandles(20, 10), 14, 3)
	if res.K.LeadingInvalid() != 13 {
		t.Errorf("K leading=%d, want 13", res.K.LeadingInvalid())
	}
	if res.D.LeadingInvalid() != 15 {
		t.Errorf("D leading=%d, want 15", res.D.LeadingInvalid())
	}
	for i, v := range res.K {
		if v.Valid && v.V != 50 {
			t.Errorf("K[%d]=%f, want 50", i, v.V)
		}
	}
	assertClose(t, "D", res.D.Last().V, 50, 1e-12)
}

func TestStochastic_Values(t *testing.T) {
	candles := []models.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 12, Low: 9, Close: 11},
		{High: 11, Low: 7, Close: 10},
		{High: 13, Low: 10, Close: 13},
	}
	// K[2] = (10-7)/(12-7)*100 = 60, K[3] = (13-7)/(13-7)*100 = 100
	res := Stochastic(candles, 3, 2)
	assertSeries(t, "K", res.K, []*float64{nil, nil, f(60), f(100)})
	assertSeries(t, "D", res.D, []*float64{nil, nil, nil, f(80)})
}

func TestVolume_OBVAndVPT(t *testing.T) {
	candles := []models.Candle{
		{Close: 10, Volume: 5},
		{Close: 11, Volume: 7},
		{Close: 11, Volume: 3},
		{Close: 9, Volume: 4},
	}
	v := Volume(candles)
	wantOBV := []float64{0, 7, 7, 3}
	for i, w := range wantOBV {
		assertClose(t, "obv", v.OBV[i], w, 1e-12)
	}
	wantVPT := []float64{0, 0.7, 0.7, 0.7 - 4*2.0/11.0}
	for i, w := range wantVPT {
		assertClose(t, "vpt", v.VPT[i], w, 1e-9)
	}
	assertClose(t, "avg", v.AvgVolume, 4.75, 1e-12)
	// window shrinks to the series length
	if v.MA.LeadingInvalid() != 3 {
		t.Errorf("volume MA leading=%d, want 3", v.MA.LeadingInvalid())
	}
}

func TestVolume_OBVInvariant(t *testing.T) {
	prices := oscillating(50)
	candles := make([]models.Candle, len(prices))
	for i, p := range prices {
		candles[i] = models.Candle{Close: p, Volume: float64(i%7 + 1)}
	}
	v := Volume(candles)
	if v.OBV[0] != 0 {
		t.Fatalf("obv[0]=%f", v.OBV[0])
	}
	for i := 1; i < len(candles); i++ {
		want := v.OBV[i-1]
		switch {
		case prices[i] > prices[i-1]:
			want += candles[i].Volume
		case prices[i] < prices[i-1]:
			want -= candles[i].Volume
		}
		if v.OBV[i] != want {
			t.Errorf("obv[%d]=%f, want %f", i, v.OBV[i], want)
		}
	}
}

func TestVolume_Trend(t *testing.T) {
	tests := []struct {
		name    string
		volumes []float64
		want    string
	}{
		{"rising", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, TrendIncreasing},
		{"falling", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, TrendDecreasing},
		{"short", []float64{3, 4}, TrendIncreasing},
		{"zero volume", []float64{0, 0, 0, 0, 0, 0}, TrendDecreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := make([]models.Candle, len(tt.volumes))
			for i, vol := range tt.volumes {
				candles[i] = models.Candle{Close: 1, Volume: vol}
			}
			if got := Volume(candles).Trend; got != tt.want {
				t.Errorf("trend=%s, want %s", got, tt.want)
			}
		})
	}
}

func TestVolume_Empty(t *testing.T) {
	if !Volume(nil).Empty() {
		t.Errorf("expected empty stats")
	}
}

func TestCompute_OscillatingScenario(t *testing.T) {
	prices := oscillating(40)
	candles := make([]models.Candle, len(prices))
	for i, p := range prices {
		candles[i] = models.Candle{Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 100}
	}
	s := Compute(candles, DefaultParams())
	if s.MA.LeadingInvalid() != 13 {
		t.Errorf("MA(14) leading=%d, want 13", s.MA.LeadingInvalid())
	}
	if s.RSI.LeadingInvalid() != 14 {
		t.Errorf("RSI(14) leading=%d, want 14", s.RSI.LeadingInvalid())
	}
	for i := 14; i < len(prices); i++ {
		if !s.MA[i].Valid || !s.RSI[i].Valid {
			t.Errorf("expected numeric values at %d", i)
		}
	}
}
