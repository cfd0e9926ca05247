package schemas

// -- Plugin Service Wire Messages --
//
// These are the request and response shapes of the PluginService RPC
// surface. The schema is fixed by the contract with the orchestrator; the
// structs below are its Go rendering and must stay wire-compatible.

// ListPluginsRequest asks the server for every plugin definition it hosts.
type ListPluginsRequest struct{}

// ListPluginsResponse returns the hosted plugin definitions in registration
// order.
type ListPluginsResponse struct {
	Plugins []PluginDefinition `json:"plugins,omitempty"`
}

// RunRequest asks the server to execute a set of matched plugins against a
// target.
type RunRequest struct {
	Target  TargetInfo      `json:"target"`
	Plugins []MatchedPlugin `json:"plugins,omitempty"`
}

// RunResponse aggregates the detection reports of every plugin executed for
// a RunRequest.
type RunResponse struct {
	Reports []DetectionReport `json:"reports,omitempty"`
}
