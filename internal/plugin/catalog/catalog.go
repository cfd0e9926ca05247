// File: internal/plugin/catalog/catalog.go

// Package catalog is the static allow-list of detector packages hosted by
// this server. Discovery is deliberately explicit: the build decides the
// plugin set, not a runtime namespace walk, so the hosted set is
// deterministic and each entry is independently testable.
package catalog

import (
	"fmt"

	"github.com/wisdark/tsunami-security-scanner/internal/detectors/callbackrce"
	"github.com/wisdark/tsunami-security-scanner/internal/detectors/exposedui"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
)

// registrations lists every detector package compiled into the server. Add
// new detectors here.
var registrations = []func(*plugin.Registry) error{
	exposedui.Register,
	callbackrce.Register,
}

// Load registers every cataloged detector into r. Any registration failure
// is fatal to startup: the server must not run with a partial plugin set.
func Load(r *plugin.Registry) error {
	for _, register := range registrations {
		if err := register(r); err != nil {
			return fmt.Errorf("loading plugin catalog: %w", err)
		}
	}
	return nil
}
