package models

import (
	"encoding/json"
	"testing"
)

func TestSignalReport_JSONDirection(t *testing.T) {
	report := SignalReport{Recommendation: FusedRecommendation{Direction: Sell, Confidence: 0.6}}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var data struct {
		Recommendation map[string]any `json:"recommendation"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := data.Recommendation
	if rec["direction"] != "SELL" {
		t.Fatalf("direction %v in %s", rec["direction"], raw)
	}
	if _, ok := rec["recommendation"]; ok {
		t.Fatalf("nested recommendation key in %s", raw)
	}
}
