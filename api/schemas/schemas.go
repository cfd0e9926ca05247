// Package schemas defines the canonical wire and API types of the plugin
// server: the plugin service message shapes shared with the orchestrator and
// the VulnDetector interface every hosted plugin implements.
//
// Interfaces live here, at the API boundary, so that internal packages can
// depend on the contract without importing each other.
package schemas

import "context"

// VulnDetector is the capability every hosted plugin provides: a static
// descriptor plus a scan operation.
//
// Implementations must be safe for concurrent use; a single instance is
// constructed at startup and invoked from many RPC workers for the lifetime
// of the process.
type VulnDetector interface {
	// Definition returns the immutable descriptor of the plugin. It must
	// return the same value on every call.
	Definition() PluginDefinition

	// Detect runs the detection logic against the target, restricted to the
	// matched services. It blocks until detection completes or ctx is done
	// and returns one report per affected service. Returning an error marks
	// the scan as failed for this plugin only.
	Detect(ctx context.Context, target TargetInfo, services []NetworkService) ([]DetectionReport, error)
}
