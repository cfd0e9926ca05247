package schemas

// -- Plugin Representation Schemas --

// PluginType categorizes what a plugin does. The server currently hosts
// vulnerability detection plugins only, but the wire contract reserves room
// for other kinds.
type PluginType string

const (
	// PluginTypeVulnDetection marks a plugin that detects vulnerabilities on
	// a scan target.
	PluginTypeVulnDetection PluginType = "VULN_DETECTION"
)

// PluginInfo carries the static, human-facing metadata of a plugin.
type PluginInfo struct {
	Type        PluginType `json:"type"`
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Description string     `json:"description"`
}

// PluginDefinition is the full descriptor of one detector: its info block
// plus the targeting criteria the orchestrator uses to match it against
// discovered network services. Definitions are immutable; they are supplied
// by the detector implementation itself and never change at runtime.
type PluginDefinition struct {
	Info PluginInfo `json:"info"`

	// TargetServiceNames restricts the plugin to services whose name appears
	// in the list. Empty means the plugin targets every service.
	TargetServiceNames []string `json:"target_service_names,omitempty"`

	// TargetSoftware restricts the plugin to a specific software product.
	TargetSoftware string `json:"target_software,omitempty"`

	// ForWebService indicates the plugin only makes sense against HTTP(S)
	// services.
	ForWebService bool `json:"for_web_service,omitempty"`
}

// Name returns the descriptor name, the key under which the plugin is
// registered and dispatched.
func (d PluginDefinition) Name() string {
	return d.Info.Name
}

// MatchedPlugin pairs a plugin definition with the network services the
// orchestrator decided the plugin should inspect.
type MatchedPlugin struct {
	Plugin   PluginDefinition `json:"plugin"`
	Services []NetworkService `json:"services,omitempty"`
}
