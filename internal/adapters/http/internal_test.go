package http

import (
	"errors"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"/v1/convert", "/v1/convert", true},
		{"/v1/plans/abc-123", "/v1/plans/:id", true},
		{"/v1/plans/abc/stations", "/v1/plans/:id", false},
		{"/v1/plans/", "/v1/plans/:id", false},
		{"/v1/sources/buoys/plans", "/v1/sources/:name/plans", true},
		{"/v1/sources/buoys/jobs", "/v1/sources/:name/plans", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestEtagMatches(t *testing.T) {
	etag := `W/"abc"`
	for header, want := range map[string]bool{
		`W/"abc"`:      true,
		`"abc"`:        true,
		`"x", W/"abc"`: true,
		`*`:            true,
		`W/"abd"`:      false,
		``:             false,
	} {
		if got := etagMatches(header, etag); got != want {
			t.Errorf("etagMatches(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestOverlayConfig(t *testing.T) {
	defaults := domain.DefaultPlanConfig()

	cfg, err := overlayConfig(defaults, nil)
	if err != nil || cfg != defaults {
		t.Errorf("empty overlay changed defaults: %+v, %v", cfg, err)
	}

	cfg, err = overlayConfig(defaults, []byte(`{"format":"UTM","cluster":true,"auto_fix_dmm":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != domain.FormatUTM || !cfg.Cluster || cfg.AutoFixDMM {
		t.Errorf("overlay not applied: %+v", cfg)
	}
	if cfg.ClusterKm != defaults.ClusterKm || cfg.Page != defaults.Page {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}

	if _, err := overlayConfig(defaults, []byte(`{"margin_pct":"wide"}`)); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRelayable_PlanFilter(t *testing.T) {
	ev := []byte(`{"id":"plan-1","status":"completed","stations":3}`)
	tests := []struct {
		name   string
		data   []byte
		planID string
		want   bool
	}{
		{"no filter", ev, "", true},
		{"matching plan", ev, "plan-1", true},
		{"other plan", ev, "plan-2", false},
		{"undecodable event", []byte(`not json`), "plan-1", false},
		{"undecodable event without filter", []byte(`not json`), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relayable(tt.data, tt.planID); got != tt.want {
				t.Errorf("relayable(%s, %q) = %v, want %v", tt.data, tt.planID, got, tt.want)
			}
		})
	}
}
