package http

// Route patterns for the submitter HTTP surface.
const (
	routeStatus = "/v1/submitter/status"
)

// Route names for mux URL building.
const (
	routeNameStatus = "submitter_status"
)
