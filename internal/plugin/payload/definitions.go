// File: internal/plugin/payload/definitions.go
package payload

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tokens substituted into payload strings at generation time.
const (
	// TokenCallbackServerURL is replaced with the callback URI derived from
	// the per-payload secret.
	TokenCallbackServerURL = "$TSUNAMI_PAYLOAD_TOKEN_URL"
	// TokenRandomString is replaced with the per-payload secret itself.
	TokenRandomString = "$TSUNAMI_PAYLOAD_TOKEN_RANDOM"
)

// VulnerabilityType classifies what kind of weakness a payload exercises.
type VulnerabilityType string

const (
	VulnerabilityTypeReflectiveRCE VulnerabilityType = "REFLECTIVE_RCE"
	VulnerabilityTypeBlindRCE      VulnerabilityType = "BLIND_RCE"
	VulnerabilityTypeSSRF          VulnerabilityType = "SSRF"
)

// InterpretationEnvironment is the language or shell that interprets the
// payload string on the target.
type InterpretationEnvironment string

const (
	InterpretationEnvironmentLinuxShell InterpretationEnvironment = "LINUX_SHELL"
	InterpretationEnvironmentJava       InterpretationEnvironment = "JAVA"
	InterpretationEnvironmentPHP        InterpretationEnvironment = "PHP"
)

// ExecutionEnvironment is how the interpreted payload gets executed.
type ExecutionEnvironment string

const (
	// ExecutionEnvironmentInterpretation means executing the payload is the
	// same act as interpreting it (e.g. a shell command line).
	ExecutionEnvironmentInterpretation ExecutionEnvironment = "EXEC_INTERPRETATION_ENVIRONMENT"
)

// ValidationType says how payload execution is confirmed for payloads that
// do not use the callback server.
type ValidationType string

const (
	// ValidationTypeRegex confirms execution by matching a regular
	// expression against in-band response data.
	ValidationTypeRegex ValidationType = "VALIDATION_REGEX"
)

// Config describes the payload a detector asks for.
type Config struct {
	VulnerabilityType         VulnerabilityType
	InterpretationEnvironment InterpretationEnvironment
	ExecutionEnvironment      ExecutionEnvironment
}

// Definition is one pre-built payload template from the payload library.
type Definition struct {
	Name                      string                    `yaml:"name"`
	VulnerabilityTypes        []VulnerabilityType       `yaml:"vulnerability_type"`
	InterpretationEnvironment InterpretationEnvironment `yaml:"interpretation_environment"`
	ExecutionEnvironment      ExecutionEnvironment      `yaml:"execution_environment"`
	UsesCallbackServer        bool                      `yaml:"uses_callback_server"`
	PayloadString             string                    `yaml:"payload_string"`
	ValidationType            ValidationType            `yaml:"validation_type"`
	ValidationRegex           string                    `yaml:"validation_regex"`
}

type library struct {
	Payloads []Definition `yaml:"payloads"`
}

//go:embed payload_definitions.yaml
var defaultLibrary []byte

// DefaultDefinitions parses and validates the payload library embedded in
// the binary.
func DefaultDefinitions() ([]Definition, error) {
	return ParseDefinitions(defaultLibrary)
}

// ParseDefinitions parses a YAML payload library and validates every entry.
// An invalid library is a startup error; the server must not run with a
// partially usable payload set.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var lib library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing payload library: %w", err)
	}
	if len(lib.Payloads) == 0 {
		return nil, fmt.Errorf("payload library contains no payloads")
	}
	for i, def := range lib.Payloads {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("payload definition %d (%q): %w", i, def.Name, err)
		}
	}
	return lib.Payloads, nil
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("missing name")
	}
	if def.InterpretationEnvironment == "" {
		return fmt.Errorf("missing interpretation environment")
	}
	if def.ExecutionEnvironment == "" {
		return fmt.Errorf("missing execution environment")
	}
	if len(def.VulnerabilityTypes) == 0 {
		return fmt.Errorf("missing vulnerability types")
	}
	if def.PayloadString == "" {
		return fmt.Errorf("missing payload string")
	}
	if def.UsesCallbackServer {
		if !strings.Contains(def.PayloadString, TokenCallbackServerURL) {
			return fmt.Errorf("callback payload does not embed %s", TokenCallbackServerURL)
		}
		return nil
	}
	if def.ValidationType != ValidationTypeRegex {
		return fmt.Errorf("non-callback payload needs validation type %s", ValidationTypeRegex)
	}
	if def.ValidationRegex == "" {
		return fmt.Errorf("validation regex is empty")
	}
	return nil
}
