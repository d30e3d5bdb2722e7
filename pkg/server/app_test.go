package server

import (
	"context"
	"testing"
	"time"

	"CryptoSignal/internal/service/cache"
	"CryptoSignal/internal/service/ratelimit"
	"CryptoSignal/pkg/config"
	xhttp "CryptoSignal/pkg/http"
)

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second

	app := New(cfg, nil, xhttp.NewServer(cfg.Server, nil, nil), Components{
		Limiter:  ratelimit.New(5, 10),
		MemCache: cache.NewTTLCache(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
