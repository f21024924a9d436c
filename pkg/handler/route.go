package handler

// Route type
type Route string

const (
	// RouteUpdate triggers a single page update via the webhook
	RouteUpdate Route = "update"
	// RouteFile serves a file from the page snapshot
	RouteFile Route = "file"
	// RouteListing serves a generated folder listing
	RouteListing Route = "listing"
	// RouteNotFound catches everything else
	RouteNotFound Route = "not_found"
)
