package clickhouse

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "native",
			cfg:  Config{Host: "ch", Port: 9000, Database: "cryptosignal", User: "u", Password: "p", MaxExecTime: 30 * time.Second},
			want: []string{"clickhouse://u:p@ch:9000/cryptosignal", "max_execution_time=30"},
		},
		{
			name: "http with timeouts",
			cfg:  Config{Host: "ch", Port: 8123, Database: "db", User: "u", UseHTTP: true, DialTimeout: 5 * time.Second},
			want: []string{"http://u:@ch:8123/db", "dial_timeout=5s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildDSN(tt.cfg)
			for _, w := range tt.want {
				if !strings.Contains(dsn, w) {
					t.Fatalf("dsn %q missing %q", dsn, w)
				}
			}
		})
	}
}

func TestNewClient_RequiresHost(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without host")
	}
}
