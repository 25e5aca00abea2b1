package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/rook-prog/CartoZen/internal/core/coords"
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the plan service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lon": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MinLon })},
			"max_lon": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MaxLon })},
			"min_lat": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MinLat })},
			"max_lat": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MaxLat })},
		},
	})

	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"value": &graphql.Field{Type: graphql.Float},
			"ok":    &graphql.Field{Type: graphql.Boolean},
			"dmm":   &graphql.Field{Type: graphql.Boolean},
			"dd":    &graphql.Field{Type: graphql.String},
			"dms":   &graphql.Field{Type: graphql.String},
		},
	})

	aliasesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Aliases",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"lon": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	clusterType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Cluster",
		Description: "Stations within cluster_km of the cluster's seed. Seed-relative, so not a transitive grouping.",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.Int},
			"size":     &graphql.Field{Type: graphql.Int},
			"members":  &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"centroid": &graphql.Field{Type: geoPointType},
		},
	})

	labelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Label",
		Fields: graphql.Fields{
			"text":     &graphql.Field{Type: graphql.String},
			"target":   &graphql.Field{Type: graphql.String},
			"ref":      &graphql.Field{Type: graphql.Int},
			"anchor":   &graphql.Field{Type: geoPointType},
			"position": &graphql.Field{Type: geoPointType},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plan",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"format":     &graphql.Field{Type: graphql.String},
			"stations":   &graphql.Field{Type: graphql.Int},
			"dropped":    &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"dmm_fixed":  &graphql.Field{Type: graphql.Int},
			"bounds":     &graphql.Field{Type: boundsType},
			"clusters":   &graphql.Field{Type: graphql.NewList(clusterType)},
			"labels":     &graphql.Field{Type: graphql.NewList(labelType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"formats": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Accepted coordinate formats",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					out := make([]string, len(domain.Formats))
					for i, f := range domain.Formats {
						out[i] = string(f)
					}
					return out, nil
				},
			},
			"aliases": &graphql.Field{
				Type:        aliasesType,
				Description: "Column names recognised for latitude and longitude",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return map[string]interface{}{"lat": coords.LatAliases, "lon": coords.LonAliases}, nil
				},
			},
			"parseCoordinate": &graphql.Field{
				Type:        coordinateType,
				Description: "Parse one coordinate value",
				Args: graphql.FieldConfigArgument{
					"value":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"format":     &graphql.ArgumentConfig{Type: graphql.String},
					"axis":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "lat"},
					"autoFixDMM": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := parseRequest{Value: domain.TextCell(p.Args["value"].(string))}
					req.Format, _ = p.Args["format"].(string)
					req.Axis, _ = p.Args["axis"].(string)
					if fix, ok := p.Args["autoFixDMM"].(bool); ok {
						req.AutoFixDMM = &fix
					}
					out, err := parseCoordinate(deps, req)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"value": out.Deg, "ok": out.OK, "dmm": out.DMM, "dd": out.DD, "dms": out.DMS,
					}, nil
				},
			},
			"isProbablyDMM": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether a decimal value looks like a DMM mistype",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"axis":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "lat"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					axis, err := domain.ParseAxis(p.Args["axis"].(string))
					if err != nil {
						return nil, err
					}
					return coords.IsProbablyDMM(p.Args["value"].(float64), axis), nil
				},
			},
			"plan": &graphql.Field{
				Type:        planType,
				Description: "Get a built plan by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					plan, err := deps.Plans.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return planMap(plan), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func boundsField(get func(domain.Bounds) float64) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if b, ok := p.Source.(domain.Bounds); ok {
			return get(b), nil
		}
		return nil, nil
	}
}

func pointMap(p domain.GeoPoint) map[string]interface{} {
	return map[string]interface{}{"lat": p.Lat, "lon": p.Lon}
}

func planMap(plan *domain.MapPlan) map[string]interface{} {
	clusters := make([]map[string]interface{}, len(plan.Clusters))
	for i, cl := range plan.Clusters {
		clusters[i] = map[string]interface{}{
			"id": cl.ID, "size": cl.Size(), "members": cl.Members, "centroid": pointMap(cl.Centroid),
		}
	}
	labels := make([]map[string]interface{}, len(plan.Labels))
	for i, l := range plan.Labels {
		labels[i] = map[string]interface{}{
			"text": l.Text, "target": string(l.Target), "ref": l.Ref,
			"anchor": pointMap(l.Anchor), "position": pointMap(l.Position),
		}
	}
	return map[string]interface{}{
		"id":         plan.ID,
		"created_at": plan.CreatedAt,
		"format":     string(plan.Normalized.Format),
		"stations":   len(plan.Normalized.Stations),
		"dropped":    plan.Normalized.Dropped,
		"dmm_fixed":  plan.Normalized.DMMFixed,
		"bounds":     plan.Bounds,
		"clusters":   clusters,
		"labels":     labels,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
