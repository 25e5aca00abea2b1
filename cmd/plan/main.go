package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rook-prog/CartoZen/internal/adapters/postgres"
	"github.com/rook-prog/CartoZen/internal/adapters/tabular"
	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/core/usecases"
	"github.com/rook-prog/CartoZen/internal/pkg/config"
	"github.com/rook-prog/CartoZen/internal/pkg/logging"
)

// plan builds map plans offline, from station files or configured database
// sources, and prints them as JSON.
//
//	plan [-format DMS|DD|UTM] [-config overrides.json] [-out dir] file.csv ...
//	plan -source coastal
func main() {
	var (
		format     = flag.String("format", "", "coordinate format: DMS, DD or UTM (default from config)")
		latCol     = flag.String("lat", "", "latitude column name")
		lonCol     = flag.String("lon", "", "longitude column name")
		configPath = flag.String("config", "", "JSON file with plan config overrides")
		source     = flag.String("source", "", "comma-separated database sources to plan")
		outDir     = flag.String("out", "", "write <name>.plan.json files here instead of stdout")
		workers    = flag.Int("workers", 4, "files planned concurrently")
	)
	flag.Parse()

	cfg, err := config.Load("cartozen-plan")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("cartozen-plan", cfg.Log.Level, "text")

	planCfg := cfg.Pipeline.PlanDefaults()
	if *configPath != "" {
		if planCfg, err = loadOverrides(*configPath, planCfg); err != nil {
			log.Fatalf("plan config: %v", err)
		}
	}
	if *format != "" {
		if planCfg.Format, err = formatFlag(*format); err != nil {
			log.Fatalf("-format: %v", err)
		}
	}
	if *latCol != "" {
		planCfg.LatColumn = *latCol
	}
	if *lonCol != "" {
		planCfg.LonColumn = *lonCol
	}

	ctx := context.Background()

	var opts []usecases.PlanOption
	if *source != "" {
		if !cfg.Database.Enabled {
			log.Fatal("-source needs database.enabled")
		}
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		opts = append(opts, usecases.WithStationSource(postgres.NewStationSource(db, cfg.Sources)))
	}
	plans := usecases.NewPlanService(nil, nil, opts...)

	var jobs []job
	if *source != "" {
		for _, name := range strings.Split(*source, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			jobs = append(jobs, job{name: name, run: func() (*domain.MapPlan, error) {
				return plans.BuildFromSource(ctx, name, planCfg)
			}})
		}
	}
	reader := tabular.NewReader()
	for _, path := range flag.Args() {
		jobs = append(jobs, job{name: path, run: func() (*domain.MapPlan, error) {
			t, err := readTable(reader, path)
			if err != nil {
				return nil, err
			}
			return plans.Build(ctx, t, planCfg)
		}})
	}
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: plan [flags] file.csv|file.xlsx ... | plan -source name[,name]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	results := runJobs(jobs, *workers)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			slog.Error("plan failed", "input", r.name, "error", r.err)
			continue
		}
		slog.Info("plan built", "input", r.name, "id", r.plan.ID,
			"stations", len(r.plan.Normalized.Stations), "dropped", len(r.plan.Normalized.Dropped), "clusters", len(r.plan.Clusters))
		if err := writePlan(*outDir, r); err != nil {
			failed++
			slog.Error("write plan", "input", r.name, "error", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// formatFlag accepts the short CLI names (DD for decimal degrees) as well as
// the full format names.
func formatFlag(s string) (domain.Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DD", "DEC", "DECIMAL":
		return domain.FormatDecimalDegrees, nil
	}
	return domain.ParseFormat(s)
}

type job struct {
	name string
	run  func() (*domain.MapPlan, error)
}

type result struct {
	name string
	plan *domain.MapPlan
	err  error
}

// runJobs runs every job with at most n in flight and keeps input order.
func runJobs(jobs []job, n int) []result {
	if n < 1 {
		n = 1
	}
	results := make([]result, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, n)

	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			plan, err := j.run()
			results[i] = result{name: j.name, plan: plan, err: err}
		}(i, j)
	}

	wg.Wait()
	return results
}

func readTable(reader *tabular.Reader, path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, err
	}
	defer f.Close()
	return reader.Read(filepath.Base(path), f)
}

func loadOverrides(path string, base domain.PlanConfig) (domain.PlanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func writePlan(dir string, r result) error {
	var w io.Writer = os.Stdout
	if dir != "" {
		name := strings.TrimSuffix(filepath.Base(r.name), filepath.Ext(r.name)) + ".plan.json"
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.plan)
}
