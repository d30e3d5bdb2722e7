// Command signal runs the signal pipeline over a JSON OHLCV file and prints
// the result as JSON. With -mode import it loads the file into ClickHouse.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/repository"
	"CryptoSignal/internal/services/analyzers"
	"CryptoSignal/internal/services/ensemble"
	"CryptoSignal/internal/services/fusion"
	"CryptoSignal/internal/services/indicators"
	"CryptoSignal/internal/usecase"
	pkgch "CryptoSignal/pkg/clickhouse"
	"CryptoSignal/pkg/config"
	applogger "CryptoSignal/pkg/logger"
	"CryptoSignal/pkg/util"
)

type options struct {
	mode       string
	file       string
	symbol     string
	timeframe  string
	lookback   int
	configPath string
	methods    string
	since      string
	until      string
	chAddr     string
	chDatabase string
	chUser     string
	chHTTP     bool
}

func main() {
	var o options
	flag.StringVar(&o.mode, "mode", "analyze", "analyze, predict, indicators, insights, advice or import")
	flag.StringVar(&o.file, "file", "", "JSON OHLCV file (objects or [ts,o,h,l,c,v] rows)")
	flag.StringVar(&o.symbol, "symbol", "", "symbol label, defaults to the file name")
	flag.StringVar(&o.timeframe, "tf", "7d", "timeframe: 1h, 24h, 7d or 30d")
	flag.IntVar(&o.lookback, "lookback", 0, "ensemble feature window, 0 uses the configured value")
	flag.StringVar(&o.configPath, "config", "", "optional config file for analysis parameters and ClickHouse")
	flag.StringVar(&o.methods, "methods", "", "comma separated advisor methods")
	flag.StringVar(&o.since, "since", "", "drop candles before this time (RFC3339, date or unix)")
	flag.StringVar(&o.until, "until", "", "drop candles after this time (RFC3339, date or unix)")
	flag.StringVar(&o.chAddr, "ch-addr", "", "import: ClickHouse host:port, overrides the config")
	flag.StringVar(&o.chDatabase, "ch-db", "", "import: ClickHouse database, overrides the config")
	flag.StringVar(&o.chUser, "ch-user", "", "import: ClickHouse user; password from CLICKHOUSE_PASSWORD")
	flag.BoolVar(&o.chHTTP, "ch-http", false, "import: use the HTTP protocol")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		log.Fatalf("signal: %v", err)
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	if o.file == "" {
		return fmt.Errorf("-file is required")
	}
	cfg := config.Default()
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr", Service: "signal"})
	if err != nil {
		return err
	}

	from, to, err := util.ParseRange(o.since, o.until)
	if err != nil {
		return err
	}
	candles, err := repository.LoadCandles(o.file)
	if err != nil {
		return err
	}
	candles = repository.Between(candles, from, to)
	if o.symbol == "" {
		o.symbol = strings.TrimSuffix(filepath.Base(o.file), filepath.Ext(o.file))
	}
	l.Debug("candles loaded", applogger.String("symbol", o.symbol), applogger.Int("rows", len(candles)))

	gen := usecase.NewSignalGenerator(
		ensemble.NewPredictor(
			ensemble.WithLookback(cfg.Analysis.Lookback),
			ensemble.WithMaxCandles(cfg.Analysis.MaxCandles),
			ensemble.WithParallel(cfg.Analysis.Parallel),
		),
		usecase.WithIndicatorParams(cfg.Analysis.Indicators),
		usecase.WithWeights(fusion.Weights(cfg.Analysis.Weights)),
		usecase.WithTrainTimeout(cfg.Analysis.TrainTimeout),
		usecase.WithGeneratorLogger(l),
	)
	insights := usecase.NewInsightsUseCase(repository.StaticMarketData(candles), gen, usecase.WithInsightsLogger(l))

	var result any
	switch o.mode {
	case "analyze":
		result, err = insights.AnalyzeCandles(ctx, o.symbol, o.timeframe, candles)
	case "predict":
		result = gen.PredictLookback(ctx, candles, o.lookback)
	case "indicators":
		snap := gen.Indicators(candles)
		result = struct {
			Indicators indicators.Snapshot `json:"indicators"`
			Signals    models.BasicSignals `json:"signals"`
		}{snap, analyzers.BasicSignals(snap.Closes, cfg.Analysis.Indicators.Window)}
	case "insights":
		result, err = insights.Insights(ctx, o.symbol, o.timeframe)
	case "advice":
		var methods []string
		if o.methods != "" {
			for _, m := range strings.Split(o.methods, ",") {
				methods = append(methods, strings.TrimSpace(m))
			}
		}
		result, err = usecase.NewAdvisorUseCase(insights).Advise(ctx, usecase.AdviceParams{
			Coin:      o.symbol,
			Timeframe: o.timeframe,
			Methods:   methods,
		})
	case "import":
		chOpts, err := clickhouseOptions(o, os.Getenv)
		if err != nil {
			return err
		}
		return importCandles(ctx, cfg.MarketData.ClickHouse, o.symbol, candles, l, chOpts...)
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// clickhouseOptions turns the -ch-* flags into client overrides.
func clickhouseOptions(o options, getenv func(string) string) ([]pkgch.ClientOption, error) {
	var opts []pkgch.ClientOption
	if o.chAddr != "" {
		host, portStr, err := net.SplitHostPort(o.chAddr)
		if err != nil {
			return nil, fmt.Errorf("-ch-addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("-ch-addr: invalid port %q", portStr)
		}
		opts = append(opts, pkgch.WithHost(host, port))
	}
	if o.chDatabase != "" {
		opts = append(opts, pkgch.WithDatabase(o.chDatabase))
	}
	if o.chUser != "" {
		opts = append(opts, pkgch.WithCredentials(o.chUser, getenv("CLICKHOUSE_PASSWORD")))
	}
	if o.chHTTP {
		opts = append(opts, pkgch.WithHTTP(true))
	}
	return opts, nil
}

func importCandles(ctx context.Context, cfg pkgch.Config, symbol string, candles []models.Candle, l *applogger.Logger, opts ...pkgch.ClientOption) error {
	client, err := pkgch.NewClient(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.InitSchema(ctx, repository.CandleSchema); err != nil {
		return err
	}
	return repository.NewCHMarketData(client, l).StoreCandles(ctx, symbol, candles)
}
