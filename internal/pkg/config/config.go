package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Database  DatabaseConfig    `mapstructure:"database"`
	NATS      NATSConfig        `mapstructure:"nats"`
	Valkey    ValkeyConfig      `mapstructure:"valkey"`
	Telemetry TelemetryConfig   `mapstructure:"telemetry"`
	Log       LogConfig         `mapstructure:"log"`
	Pipeline  PipelineConfig    `mapstructure:"pipeline"`
	Sources   map[string]string `mapstructure:"sources"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	BodyLimitMB  int `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Prefix  string `mapstructure:"prefix"`
	PlanTTL int    `mapstructure:"plan_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PipelineConfig holds the defaults for a plan request. Request fields
// are overlaid on top of it.
type PipelineConfig struct {
	Format           string  `mapstructure:"format"`
	AutoFixDMM       bool    `mapstructure:"auto_fix_dmm"`
	AutoExtent       bool    `mapstructure:"auto_extent"`
	MarginPct        float64 `mapstructure:"margin_pct"`
	BufferDeg        float64 `mapstructure:"buffer_deg"`
	Cluster          bool    `mapstructure:"cluster"`
	ClusterKm        float64 `mapstructure:"cluster_km"`
	MaxInsets        int     `mapstructure:"max_insets"`
	InsetPadDeg      float64 `mapstructure:"inset_pad_deg"`
	Labels           bool    `mapstructure:"labels"`
	LabelDX          float64 `mapstructure:"label_dx"`
	LabelDY          float64 `mapstructure:"label_dy"`
	FontSize         float64 `mapstructure:"font_size"`
	Page             string  `mapstructure:"page"`
	Orientation      string  `mapstructure:"orientation"`
	DeclutterMaxIter int     `mapstructure:"declutter_max_iter"`
}

// PlanDefaults converts the pipeline section into the base PlanConfig.
func (p PipelineConfig) PlanDefaults() domain.PlanConfig {
	return domain.PlanConfig{
		Format:           domain.Format(p.Format),
		AutoFixDMM:       p.AutoFixDMM,
		AutoExtent:       p.AutoExtent,
		MarginPct:        p.MarginPct,
		BufferDeg:        p.BufferDeg,
		Cluster:          p.Cluster,
		ClusterKm:        p.ClusterKm,
		MaxInsets:        p.MaxInsets,
		InsetPadDeg:      p.InsetPadDeg,
		Labels:           p.Labels,
		LabelDX:          p.LabelDX,
		LabelDY:          p.LabelDY,
		FontSize:         p.FontSize,
		Page:             p.Page,
		Orientation:      p.Orientation,
		DeclutterMaxIter: p.DeclutterMaxIter,
	}
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CARTOZEN_SERVER_PORT → server.port
	v.SetEnvPrefix("CARTOZEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.body_limit_mb", 20)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cartozen")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "stations")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "cartozen:")
	v.SetDefault("valkey.plan_ttl", 3600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	d := domain.DefaultPlanConfig()
	v.SetDefault("pipeline.format", string(d.Format))
	v.SetDefault("pipeline.auto_fix_dmm", d.AutoFixDMM)
	v.SetDefault("pipeline.auto_extent", d.AutoExtent)
	v.SetDefault("pipeline.margin_pct", d.MarginPct)
	v.SetDefault("pipeline.buffer_deg", d.BufferDeg)
	v.SetDefault("pipeline.cluster", d.Cluster)
	v.SetDefault("pipeline.cluster_km", d.ClusterKm)
	v.SetDefault("pipeline.max_insets", d.MaxInsets)
	v.SetDefault("pipeline.inset_pad_deg", d.InsetPadDeg)
	v.SetDefault("pipeline.labels", d.Labels)
	v.SetDefault("pipeline.label_dx", d.LabelDX)
	v.SetDefault("pipeline.label_dy", d.LabelDY)
	v.SetDefault("pipeline.font_size", d.FontSize)
	v.SetDefault("pipeline.page", d.Page)
	v.SetDefault("pipeline.orientation", d.Orientation)
	v.SetDefault("pipeline.declutter_max_iter", d.DeclutterMaxIter)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, "server.body_limit_mb must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
		if len(c.Sources) == 0 {
			errs = append(errs, "sources: at least one query is required when database.enabled is set")
		}
	}
	for name, q := range c.Sources {
		if strings.TrimSpace(q) == "" {
			errs = append(errs, fmt.Sprintf("sources.%s: query is empty", name))
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Valkey.PlanTTL <= 0 {
		errs = append(errs, "valkey.plan_ttl must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPAddr == "" {
		errs = append(errs, "telemetry.otlp_addr is required")
	}
	if err := c.Pipeline.PlanDefaults().Validate(); err != nil {
		errs = append(errs, "pipeline: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
