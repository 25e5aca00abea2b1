package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rook-prog/CartoZen/internal/adapters/tabular"
	"github.com/rook-prog/CartoZen/internal/core/coords"
	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/pkg/telemetry"
)

// planBody is the JSON input of the table endpoints. config fields are
// overlaid on the server defaults, so a request only names what it changes.
type planBody struct {
	Columns []string        `json:"columns"`
	Rows    [][]domain.Cell `json:"rows"`
	Config  json.RawMessage `json:"config"`
}

func (b planBody) table() domain.Table {
	return domain.Table{Columns: b.Columns, Rows: b.Rows}
}

// overlayConfig decodes raw over the defaults. Empty input keeps the defaults.
func overlayConfig(defaults domain.PlanConfig, raw []byte) (domain.PlanConfig, error) {
	cfg := defaults
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: config: %v", domain.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func parsePlanBody(c *fiber.Ctx, defaults domain.PlanConfig) (planBody, domain.PlanConfig, error) {
	var body planBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return body, defaults, fmt.Errorf("invalid request body: %v", err)
	}
	if len(body.Columns) == 0 {
		return body, defaults, fmt.Errorf("columns are required")
	}
	cfg, err := overlayConfig(defaults, body.Config)
	return body, cfg, err
}

// CreatePlanHandler runs the full pipeline on a JSON table.
func CreatePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, cfg, err := parsePlanBody(c, deps.Defaults)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		plan, err := deps.Plans.Build(c.UserContext(), body.table(), cfg)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Location", "/v1/plans/"+plan.ID)
		return c.Status(fiber.StatusCreated).JSON(plan)
	}
}

// UploadPlanHandler runs the pipeline on an uploaded CSV or XLSX file. The
// "config" form field carries the same JSON object as the JSON endpoint;
// "format", "lat_column" and "lon_column" fields override it.
func UploadPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return errBadRequest(c, "file form field is required")
		}
		cfg, err := overlayConfig(deps.Defaults, []byte(c.FormValue("config")))
		if err != nil {
			return errFromDomain(c, err)
		}
		if v := c.FormValue("format"); v != "" {
			cfg.Format = domain.Format(v)
		}
		if v := c.FormValue("lat_column"); v != "" {
			cfg.LatColumn = v
		}
		if v := c.FormValue("lon_column"); v != "" {
			cfg.LonColumn = v
		}

		f, err := fh.Open()
		if err != nil {
			return errBadRequest(c, "cannot open uploaded file")
		}
		defer f.Close()

		_, span := telemetry.Tracer().Start(c.UserContext(), telemetry.SpanTableDecode,
			trace.WithAttributes(attribute.String("file.name", fh.Filename), attribute.Int64("file.size", fh.Size)))
		t, err := deps.Reader.Read(fh.Filename, f)
		if err != nil {
			span.RecordError(err)
			span.End()
			LoggerFromCtx(c.UserContext()).Warn("decode upload", "file", fh.Filename, "error", err)
			if errors.Is(err, domain.ErrEmptyTable) || errors.Is(err, tabular.ErrUnsupportedFile) {
				return errFromDomain(c, err)
			}
			return errBadRequest(c, err.Error())
		}
		span.SetAttributes(attribute.Int(telemetry.AttrRows, len(t.Rows)))
		span.End()

		plan, err := deps.Plans.Build(c.UserContext(), t, cfg)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Location", "/v1/plans/"+plan.ID)
		return c.Status(fiber.StatusCreated).JSON(plan)
	}
}

// EnqueuePlanHandler queues a plan for the worker and returns its id.
func EnqueuePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, cfg, err := parsePlanBody(c, deps.Defaults)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		id, err := deps.Plans.Enqueue(c.UserContext(), body.table(), cfg)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Location", "/v1/plans/"+id)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id, "status": "queued"})
	}
}

// SourcePlanHandler builds a plan from a configured database source.
func SourcePlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return errBadRequest(c, "source name is required")
		}
		var body struct {
			Config json.RawMessage `json:"config"`
		}
		if len(c.Body()) > 0 {
			if err := json.Unmarshal(c.Body(), &body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		cfg, err := overlayConfig(deps.Defaults, body.Config)
		if err != nil {
			return errFromDomain(c, err)
		}
		plan, err := deps.Plans.BuildFromSource(c.UserContext(), name, cfg)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Location", "/v1/plans/"+plan.ID)
		return c.Status(fiber.StatusCreated).JSON(plan)
	}
}

// ListSourcesHandler returns the configured database source names.
func ListSourcesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sources := deps.Plans.Sources()
		if sources == nil {
			sources = []string{}
		}
		return c.JSON(fiber.Map{"sources": sources})
	}
}

// GetPlanHandler returns a cached plan by id.
func GetPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan, err := deps.Plans.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(plan)
	}
}

// PlanStationsHandler returns a page of a plan's stations.
func PlanStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 1000 {
			limit = 100
		}

		stations, total, err := deps.Plans.Stations(c.UserContext(), c.Params("id"), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: stations, Pagination: pg})
	}
}

// parseRequest is the body of POST /v1/coordinates/parse.
type parseRequest struct {
	Value      domain.Cell `json:"value"`
	Format     string      `json:"format"`
	Axis       string      `json:"axis"`
	AutoFixDMM *bool       `json:"auto_fix_dmm"`
}

// parseResponse carries the parsed value and its display forms.
type parseResponse struct {
	coords.Value
	DD  string `json:"dd,omitempty"`
	DMS string `json:"dms,omitempty"`
}

func parseCoordinate(deps *Dependencies, req parseRequest) (parseResponse, error) {
	axis, err := domain.ParseAxis(req.Axis)
	if err != nil {
		return parseResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	format := req.Format
	if format == "" {
		format = string(deps.Defaults.Format)
	}
	autoFix := deps.Defaults.AutoFixDMM
	if req.AutoFixDMM != nil {
		autoFix = *req.AutoFixDMM
	}
	v, err := deps.Plans.ParseValue(req.Value, domain.Format(format), axis, autoFix)
	if err != nil {
		return parseResponse{}, err
	}
	out := parseResponse{Value: v}
	if v.OK {
		out.DD = coords.FormatDD(v.Deg, axis)
		out.DMS = coords.FormatDMS(v.Deg, axis)
	}
	return out, nil
}

// ParseCoordinateHandler parses a single coordinate value.
func ParseCoordinateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req parseRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		out, err := parseCoordinate(deps, req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

// ConvertHandler returns only the normalized table: the source columns
// with Lat_DD and Lon_DD appended. Superseded by POST /v1/plans.
func ConvertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, cfg, err := parsePlanBody(c, deps.Defaults)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		norm, err := deps.Plans.Normalize(c.UserContext(), body.table(), cfg)
		if err != nil {
			return errFromDomain(c, err)
		}
		flat := norm.Table()
		return c.JSON(fiber.Map{
			"columns":   flat.Columns,
			"rows":      flat.Rows,
			"dropped":   norm.Dropped,
			"dmm_fixed": norm.DMMFixed,
		})
	}
}

// FormatsHandler lists the accepted coordinate formats.
func FormatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"formats": domain.Formats})
	}
}

// AliasesHandler lists the column names recognised for latitude and longitude.
func AliasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"lat": coords.LatAliases, "lon": coords.LonAliases})
	}
}
