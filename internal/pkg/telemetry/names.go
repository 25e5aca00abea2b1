package telemetry

// Span and attribute names used by the plan pipeline.
const (
	SpanPlanBuild   = "plan.build"
	SpanNormalize   = "plan.normalize"
	SpanExtent      = "plan.extent"
	SpanCluster     = "plan.cluster"
	SpanDeclutter   = "plan.declutter"
	SpanSourceLoad  = "source.load"
	SpanTableDecode = "table.decode"

	AttrPlanID    = "cartozen.plan.id"
	AttrFormat    = "cartozen.format"
	AttrRows      = "cartozen.rows"
	AttrStations  = "cartozen.stations"
	AttrDropped   = "cartozen.dropped"
	AttrClusters  = "cartozen.clusters"
	AttrLabels    = "cartozen.labels"
	AttrSource    = "cartozen.source"
	AttrIteration = "cartozen.declutter.iterations"
)
