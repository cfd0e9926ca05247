// File: internal/plugin/payload/generator.go
package payload

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// CallbackClient is the slice of the callback-server client the generator
// needs. Satisfied by *tcs.Client.
type CallbackClient interface {
	// IsEnabled reports whether a callback server is configured and usable.
	IsEnabled() bool
	// CallbackURI derives the URI a payload should hit from its secret.
	CallbackURI(secret string) string
	// HasOOBLog reports whether the callback server recorded an
	// interaction for the secret.
	HasOOBLog(ctx context.Context, secret string) bool
}

// Generator selects a payload definition matching a detector's request and
// instantiates it with a fresh secret. One Generator is shared by all
// detector instances; it holds no per-payload state and is safe for
// concurrent use.
type Generator struct {
	secrets     SecretGenerator
	definitions []Definition
	callback    CallbackClient
	logger      *zap.Logger
}

// NewGenerator wires a payload generator from its parts.
func NewGenerator(secrets SecretGenerator, definitions []Definition, callback CallbackClient, logger *zap.Logger) (*Generator, error) {
	if secrets == nil {
		return nil, fmt.Errorf("secret generator cannot be nil")
	}
	if len(definitions) == 0 {
		return nil, fmt.Errorf("payload definitions cannot be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("callback client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		secrets:     secrets,
		definitions: definitions,
		callback:    callback,
		logger:      logger.Named("payload"),
	}, nil
}

// IsCallbackServerEnabled reports whether generated payloads may rely on
// out-of-band confirmation.
func (g *Generator) IsCallbackServerEnabled() bool {
	return g.callback.IsEnabled()
}

// Generate returns a payload matching config. Callback-capable payloads are
// preferred when the callback server is enabled; otherwise the generator
// falls back to an in-band validated payload.
func (g *Generator) Generate(config Config) (*Payload, error) {
	return g.generate(config, true)
}

// GenerateNoCallback returns a payload matching config that never relies on
// the callback server.
func (g *Generator) GenerateNoCallback(config Config) (*Payload, error) {
	return g.generate(config, false)
}

func (g *Generator) generate(config Config, allowCallback bool) (*Payload, error) {
	if allowCallback && g.callback.IsEnabled() {
		if def, ok := g.findMatch(config, true); ok {
			return g.instantiate(def, config)
		}
	}
	if def, ok := g.findMatch(config, false); ok {
		return g.instantiate(def, config)
	}
	return nil, fmt.Errorf(
		"no payload implemented for %s vulnerability type, %s interpretation environment, %s execution environment",
		config.VulnerabilityType, config.InterpretationEnvironment, config.ExecutionEnvironment,
	)
}

func (g *Generator) findMatch(config Config, usesCallback bool) (Definition, bool) {
	for _, def := range g.definitions {
		if def.UsesCallbackServer != usesCallback {
			continue
		}
		if def.InterpretationEnvironment != config.InterpretationEnvironment {
			continue
		}
		if def.ExecutionEnvironment != config.ExecutionEnvironment {
			continue
		}
		for _, vt := range def.VulnerabilityTypes {
			if vt == config.VulnerabilityType {
				return def, true
			}
		}
	}
	return Definition{}, false
}

// instantiate fills a definition's tokens with a fresh secret and attaches
// the matching validator.
func (g *Generator) instantiate(def Definition, config Config) (*Payload, error) {
	secret, err := g.secrets.Generate(SecretLength)
	if err != nil {
		return nil, fmt.Errorf("generating payload secret: %w", err)
	}

	if def.UsesCallbackServer {
		value := strings.ReplaceAll(def.PayloadString, TokenCallbackServerURL, g.callback.CallbackURI(secret))
		g.logger.Debug("Generated callback payload",
			zap.String("definition", def.Name),
			zap.String("vulnerability_type", string(config.VulnerabilityType)),
		)
		return &Payload{
			value:              value,
			validator:          &oobValidator{client: g.callback, secret: secret},
			usesCallbackServer: true,
			config:             config,
		}, nil
	}

	value := strings.ReplaceAll(def.PayloadString, TokenRandomString, secret)
	pattern := strings.ReplaceAll(def.ValidationRegex, TokenRandomString, regexp.QuoteMeta(secret))
	validator, err := newRegexValidator(pattern)
	if err != nil {
		return nil, fmt.Errorf("payload definition %q: %w", def.Name, err)
	}
	g.logger.Debug("Generated in-band payload",
		zap.String("definition", def.Name),
		zap.String("vulnerability_type", string(config.VulnerabilityType)),
	)
	return &Payload{
		value:              value,
		validator:          validator,
		usesCallbackServer: false,
		config:             config,
	}, nil
}
