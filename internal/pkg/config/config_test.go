package config

import (
	"strings"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("cartozen-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "cartozen-test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
	if got, want := cfg.Pipeline.PlanDefaults(), domain.DefaultPlanConfig(); got != want {
		t.Errorf("pipeline defaults = %+v, want %+v", got, want)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CARTOZEN_SERVER_PORT", "9090")
	t.Setenv("CARTOZEN_PIPELINE_CLUSTER_KM", "25")
	t.Setenv("CARTOZEN_PIPELINE_FORMAT", "DMS")
	cfg, err := Load("cartozen-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	d := cfg.Pipeline.PlanDefaults()
	if d.ClusterKm != 25 || d.Format != domain.FormatDMS {
		t.Errorf("pipeline = %+v", d)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1, BodyLimitMB: 1},
		Database: DatabaseConfig{Enabled: true, Port: 5432},
		Valkey:   ValkeyConfig{PlanTTL: 60},
		Pipeline: PipelineConfig{Format: "MGRS", FontSize: 8, Labels: true, AutoExtent: true},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "database.host", "database.user", "sources", "pipeline"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_OptionalBackendsOff(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 1, WriteTimeout: 1, BodyLimitMB: 1},
		Valkey:   ValkeyConfig{PlanTTL: 60},
		Pipeline: PipelineConfig{Format: "UTM", AutoExtent: true},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
