package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func TestRunJobs_KeepsOrder(t *testing.T) {
	var jobs []job
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		jobs = append(jobs, job{name: id, run: func() (*domain.MapPlan, error) {
			if id == "c" {
				return nil, errors.New("boom")
			}
			return &domain.MapPlan{ID: id}, nil
		}})
	}
	results := runJobs(jobs, 3)
	for i, r := range results {
		if r.name != jobs[i].name {
			t.Fatalf("result %d is %q, want %q", i, r.name, jobs[i].name)
		}
		if r.name == "c" {
			if r.err == nil {
				t.Error("expected error for job c")
			}
			continue
		}
		if r.err != nil || r.plan.ID != r.name {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	if err := os.WriteFile(path, []byte(`{"cluster_km": 2.5, "format": "UTM"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	base := domain.DefaultPlanConfig()
	cfg, err := loadOverrides(path, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClusterKm != 2.5 || cfg.Format != domain.FormatUTM {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.MarginPct != base.MarginPct {
		t.Errorf("MarginPct = %v, want default %v", cfg.MarginPct, base.MarginPct)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadOverrides(bad, base); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFormatFlag(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Format
		ok   bool
	}{
		{"DD", domain.FormatDecimalDegrees, true},
		{"dd", domain.FormatDecimalDegrees, true},
		{"decimal", domain.FormatDecimalDegrees, true},
		{"Decimal Degrees", domain.FormatDecimalDegrees, true},
		{"dms", domain.FormatDMS, true},
		{"UTM", domain.FormatUTM, true},
		{"MGRS", "", false},
	}
	for _, tt := range tests {
		got, err := formatFlag(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("formatFlag(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("formatFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.ok {
			cfg := domain.DefaultPlanConfig()
			cfg.Format = got
			if err := cfg.Validate(); err != nil {
				t.Errorf("config with -format %q invalid: %v", tt.in, err)
			}
		}
	}
}
