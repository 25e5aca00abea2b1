package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rook-prog/CartoZen/internal/core/cluster"
	"github.com/rook-prog/CartoZen/internal/core/coords"
	"github.com/rook-prog/CartoZen/internal/core/declutter"
	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/core/extent"
	"github.com/rook-prog/CartoZen/internal/core/ports"
	"github.com/rook-prog/CartoZen/internal/pkg/metrics"
	"github.com/rook-prog/CartoZen/internal/pkg/telemetry"
)

// DefaultPlanTTL is how long a built plan stays retrievable, in seconds.
const DefaultPlanTTL = 3600

// PlanService runs the station-map pipeline: normalize, extent, cluster and
// label layout. Each call works on its own copy of the input.
type PlanService struct {
	cache     ports.CacheService
	publisher ports.EventPublisher
	sources   ports.StationSource
	ttl       int
	layout    func(maxIter int) declutter.Layout
	tracer    trace.Tracer
	now       func() time.Time
	log       *slog.Logger
}

// PlanOption customizes a PlanService.
type PlanOption func(*PlanService)

// WithPlanTTL sets the cache TTL for built plans.
func WithPlanTTL(seconds int) PlanOption {
	return func(s *PlanService) {
		if seconds > 0 {
			s.ttl = seconds
		}
	}
}

// WithStationSource enables BuildFromSource.
func WithStationSource(src ports.StationSource) PlanOption {
	return func(s *PlanService) { s.sources = src }
}

// WithLayout replaces the repulsion label layout.
func WithLayout(l declutter.Layout) PlanOption {
	return func(s *PlanService) {
		s.layout = func(int) declutter.Layout { return l }
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) PlanOption {
	return func(s *PlanService) { s.now = now }
}

// NewPlanService creates a PlanService. cache and publisher may be nil, in
// which case plans are not retrievable later and no events are published.
func NewPlanService(cache ports.CacheService, publisher ports.EventPublisher, opts ...PlanOption) *PlanService {
	s := &PlanService{
		cache:     cache,
		publisher: publisher,
		ttl:       DefaultPlanTTL,
		layout: func(maxIter int) declutter.Layout {
			return declutter.NewRepulsion(maxIter)
		},
		tracer: telemetry.Tracer(),
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Build runs the full pipeline for a table and returns the plan. Input
// errors (*ColumnError, *ConversionError, *UTMColumnsError, *CornerError,
// ErrUnknownFormat, ErrEmptyTable, ErrInvalidConfig) are returned as-is so
// callers can match them with errors.Is and errors.As.
func (s *PlanService) Build(ctx context.Context, t domain.Table, cfg domain.PlanConfig) (*domain.MapPlan, error) {
	return s.build(ctx, uuid.NewString(), t, cfg)
}

// Handle builds a queued plan request under its own id. Input errors are
// reported through a failed event and not returned, so the broker does not
// redeliver a job that can never succeed.
func (s *PlanService) Handle(ctx context.Context, req *domain.PlanRequest) error {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := s.build(ctx, id, req.Table, req.Config); err != nil {
		s.log.WarnContext(ctx, "queued plan failed", "plan_id", id, "error", err)
	}
	return nil
}

// Enqueue publishes a plan request for a worker and returns its id.
func (s *PlanService) Enqueue(ctx context.Context, t domain.Table, cfg domain.PlanConfig) (string, error) {
	if s.publisher == nil {
		return "", fmt.Errorf("enqueue plan: %w", domain.ErrUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if t.Len() == 0 {
		return "", domain.ErrEmptyTable
	}
	req := &domain.PlanRequest{ID: uuid.NewString(), Table: t, Config: cfg}
	if err := s.publisher.PublishPlanRequest(ctx, req); err != nil {
		return "", fmt.Errorf("enqueue plan: %w", err)
	}
	return req.ID, nil
}

// BuildFromSource loads a configured station source and builds a plan from it.
func (s *PlanService) BuildFromSource(ctx context.Context, name string, cfg domain.PlanConfig) (*domain.MapPlan, error) {
	if s.sources == nil {
		return nil, fmt.Errorf("load source %q: %w", name, domain.ErrUnavailable)
	}
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSourceLoad, trace.WithAttributes(attribute.String(telemetry.AttrSource, name)))
	t, err := s.sources.Load(ctx, name)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("load source %q: %w", name, err)
	}
	return s.Build(ctx, t, cfg)
}

// Sources lists the configured station sources.
func (s *PlanService) Sources() []string {
	if s.sources == nil {
		return nil
	}
	return s.sources.Sources()
}

// Get returns a previously built plan.
func (s *PlanService) Get(ctx context.Context, id string) (*domain.MapPlan, error) {
	if s.cache == nil {
		return nil, domain.ErrPlanNotFound
	}
	data, err := s.cache.Get(ctx, planKey(id))
	if errors.Is(err, ports.ErrCacheMiss) {
		metrics.CacheMisses.WithLabelValues("plan").Inc()
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	metrics.CacheHits.WithLabelValues("plan").Inc()

	var plan domain.MapPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

// Stations returns a page of a plan's normalized stations and the total count.
func (s *PlanService) Stations(ctx context.Context, id string, offset, limit int) ([]domain.Station, int, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	all := plan.Normalized.Stations
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = total
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Normalize runs only the normalizer.
func (s *PlanService) Normalize(ctx context.Context, t domain.Table, cfg domain.PlanConfig) (*domain.NormalizedTable, error) {
	_, span := s.tracer.Start(ctx, telemetry.SpanNormalize)
	defer span.End()
	out, err := coords.Normalize(t.Clone(), coords.Options{
		Format:     cfg.Format,
		LatColumn:  cfg.LatColumn,
		LonColumn:  cfg.LonColumn,
		AutoFixDMM: cfg.AutoFixDMM,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	recordRows(out)
	return out, nil
}

// ParseValue parses a single coordinate cell.
func (s *PlanService) ParseValue(c domain.Cell, format domain.Format, axis domain.Axis, autoFixDMM bool) (coords.Value, error) {
	f, err := domain.ParseFormat(string(format))
	if err != nil {
		return coords.Value{}, err
	}
	if f == domain.FormatUTM {
		return coords.Value{}, fmt.Errorf("%w: UTM needs four columns, parse it as a table", domain.ErrUnknownFormat)
	}
	return coords.ParseCell(c, f, axis, autoFixDMM), nil
}

func (s *PlanService) build(ctx context.Context, id string, t domain.Table, cfg domain.PlanConfig) (plan *domain.MapPlan, err error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, telemetry.SpanPlanBuild, trace.WithAttributes(
		attribute.String(telemetry.AttrPlanID, id),
		attribute.String(telemetry.AttrFormat, string(cfg.Format)),
		attribute.Int(telemetry.AttrRows, t.Len()),
	))
	defer span.End()

	defer func() {
		elapsed := s.now().Sub(start)
		metrics.PlanDuration.WithLabelValues(string(cfg.Format)).Observe(elapsed.Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.PlansTotal.WithLabelValues("failed").Inc()
			s.publish(ctx, &domain.PlanEvent{
				ID: id, Status: "failed", Time: s.now(), Error: err.Error(), DurationMS: elapsed.Milliseconds(),
			})
			return
		}
		metrics.PlansTotal.WithLabelValues("completed").Inc()
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Format, _ = domain.ParseFormat(string(cfg.Format))

	norm, err := s.Normalize(ctx, t, cfg)
	if err != nil {
		return nil, err
	}
	points := norm.Points()

	bounds, err := s.extent(ctx, points, cfg)
	if err != nil {
		return nil, err
	}

	plan = &domain.MapPlan{
		ID:         id,
		CreatedAt:  start.UTC(),
		Config:     cfg,
		Normalized: norm,
		Bounds:     bounds,
	}

	if cfg.Cluster {
		_, cspan := s.tracer.Start(ctx, telemetry.SpanCluster)
		res := cluster.Greedy(points, cfg.ClusterKm)
		plan.Clusters = res.Clusters
		plan.Representatives = res.Representatives
		plan.Insets = extent.ClusterInsets(points, res.Clusters, cfg.MaxInsets, cfg.InsetPadDeg)
		cspan.SetAttributes(attribute.Int(telemetry.AttrClusters, len(res.Clusters)))
		cspan.End()
		metrics.ClustersPerPlan.Observe(float64(len(res.Clusters)))
	}

	if cfg.Labels {
		if err := s.placeLabels(ctx, plan); err != nil {
			return nil, err
		}
	}

	plan.Duration = s.now().Sub(start)
	span.SetAttributes(
		attribute.Int(telemetry.AttrStations, len(norm.Stations)),
		attribute.Int(telemetry.AttrDropped, len(norm.Dropped)),
	)

	s.store(ctx, plan)
	s.publish(ctx, &domain.PlanEvent{
		ID:         id,
		Status:     "completed",
		Time:       s.now(),
		Stations:   len(norm.Stations),
		Dropped:    len(norm.Dropped),
		Clusters:   len(plan.Clusters),
		Bounds:     &plan.Bounds,
		DurationMS: plan.Duration.Milliseconds(),
	})

	s.log.InfoContext(ctx, "plan built",
		"plan_id", id,
		"format", cfg.Format,
		"stations", len(norm.Stations),
		"dropped", len(norm.Dropped),
		"dmm_fixed", norm.DMMFixed,
		"clusters", len(plan.Clusters),
		"labels", len(plan.Labels),
		"declutter_iterations", plan.Declutter.Iterations,
		"duration", plan.Duration,
	)
	if len(norm.Dropped) > 0 {
		s.log.DebugContext(ctx, "rows dropped", "plan_id", id, "rows", norm.Dropped)
	}
	return plan, nil
}

// extent picks the window: auto-fit with margin, buffered around the points,
// or manual DMS corners.
func (s *PlanService) extent(ctx context.Context, points []domain.GeoPoint, cfg domain.PlanConfig) (domain.Bounds, error) {
	_, span := s.tracer.Start(ctx, telemetry.SpanExtent)
	defer span.End()
	switch {
	case !cfg.AutoExtent:
		return extent.Manual(cfg.Left, cfg.Right, cfg.Bottom, cfg.Top, cfg.BufferDeg)
	case cfg.BufferDeg > 0:
		return extent.BufferedFromPoints(points, cfg.BufferDeg)
	default:
		return extent.AutoFit(points, cfg.MarginPct)
	}
}

func (s *PlanService) placeLabels(ctx context.Context, plan *domain.MapPlan) error {
	_, span := s.tracer.Start(ctx, telemetry.SpanDeclutter)
	defer span.End()

	cfg := plan.Config
	m, err := declutter.NewPageMeasurer(plan.Bounds, cfg.Page, cfg.Orientation, cfg.FontSize)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	plan.Labels = BuildLabels(plan)
	plan.Declutter = s.layout(cfg.DeclutterMaxIter).Declutter(plan.Labels, m)
	span.SetAttributes(
		attribute.Int(telemetry.AttrLabels, len(plan.Labels)),
		attribute.Int(telemetry.AttrIteration, plan.Declutter.Iterations),
	)
	metrics.DeclutterIterations.Observe(float64(plan.Declutter.Iterations))
	return nil
}

// BuildLabels places one label per station, or one per cluster when the plan
// is clustered, offset from its point by (LabelDX, LabelDY). A cluster's
// label is its first member's text plus "+N" for the other members.
func BuildLabels(plan *domain.MapPlan) []domain.Label {
	cfg := plan.Config
	norm := plan.Normalized
	col := labelColumn(norm, cfg.LabelColumn)
	text := func(station int) string {
		if col == "" {
			return fmt.Sprint(norm.Stations[station].Index + 1)
		}
		return norm.Value(station, col).String()
	}
	place := func(p domain.GeoPoint) domain.GeoPoint {
		return domain.GeoPoint{Lat: p.Lat + cfg.LabelDY, Lon: p.Lon + cfg.LabelDX}
	}

	if len(plan.Clusters) > 0 {
		labels := make([]domain.Label, len(plan.Clusters))
		for i, c := range plan.Clusters {
			t := text(c.Members[0])
			if c.Size() > 1 {
				t = fmt.Sprintf("%s +%d", t, c.Size()-1)
			}
			a := place(c.Centroid)
			labels[i] = domain.Label{Text: t, Target: domain.LabelCluster, Ref: c.ID, Anchor: a, Position: a}
		}
		return labels
	}

	labels := make([]domain.Label, len(norm.Stations))
	for i, st := range norm.Stations {
		a := place(st.Coord)
		labels[i] = domain.Label{Text: text(i), Target: domain.LabelStation, Ref: i, Anchor: a, Position: a}
	}
	return labels
}

// labelColumn returns the configured column, else the first column that is
// not a coordinate column, else "" (labels fall back to row numbers).
func labelColumn(norm *domain.NormalizedTable, want string) string {
	if want != "" {
		for _, c := range norm.Columns {
			if c == want {
				return c
			}
		}
		return ""
	}
	if norm.Format == domain.FormatUTM {
		if len(norm.Columns) > 4 {
			return norm.Columns[4]
		}
		return ""
	}
	for _, c := range norm.Columns {
		if c != norm.LatColumn && c != norm.LonColumn {
			return c
		}
	}
	return ""
}

func (s *PlanService) store(ctx context.Context, plan *domain.MapPlan) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		s.log.WarnContext(ctx, "encode plan", "plan_id", plan.ID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, planKey(plan.ID), data, s.ttl); err != nil {
		s.log.WarnContext(ctx, "cache plan", "plan_id", plan.ID, "error", err)
	}
}

func (s *PlanService) publish(ctx context.Context, ev *domain.PlanEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPlanEvent(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish plan event", "plan_id", ev.ID, "status", ev.Status, "error", err)
	}
}

func recordRows(n *domain.NormalizedTable) {
	metrics.RowsTotal.WithLabelValues("kept").Add(float64(len(n.Stations)))
	metrics.RowsTotal.WithLabelValues("dropped").Add(float64(len(n.Dropped)))
	metrics.DMMFixedTotal.Add(float64(n.DMMFixed))
}

func planKey(id string) string { return "plan:" + id }
