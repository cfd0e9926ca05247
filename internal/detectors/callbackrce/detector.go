// File: internal/detectors/callbackrce/detector.go

// Package callbackrce detects command injection in web endpoints that pass a
// query parameter to a shell. It plants a generated payload and confirms
// execution either out-of-band through the callback server or in-band
// through a payload echo in the response body.
package callbackrce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/wisdark/tsunami-security-scanner/api/schemas"
	"github.com/wisdark/tsunami-security-scanner/internal/network"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/payload"
)

const pluginName = "ShellCommandInjectionDetector"

// vulnerablePath and vulnerableParam describe the probe surface: endpoints
// of this shape are the classic debug handlers that shell out.
const (
	vulnerablePath  = "/debug/ping"
	vulnerableParam = "host"
)

const maxBodyBytes = 1 << 20

// oobWait gives the target time to fire the planted callback before the
// callback server is polled.
const oobWait = 2 * time.Second

// Register adds this detector to the registry.
func Register(r *plugin.Registry) error {
	return r.Add(pluginName, func(deps plugin.Deps) (schemas.VulnDetector, error) {
		if deps.HTTPClient == nil {
			return nil, fmt.Errorf("http client is required")
		}
		if deps.PayloadGenerator == nil {
			return nil, fmt.Errorf("payload generator is required")
		}
		return &detector{
			httpClient: deps.HTTPClient,
			payloads:   deps.PayloadGenerator,
			logger:     deps.Logger.Named("callbackrce"),
		}, nil
	})
}

type detector struct {
	httpClient *network.Client
	payloads   *payload.Generator
	logger     *zap.Logger
}

func (d *detector) Definition() schemas.PluginDefinition {
	return schemas.PluginDefinition{
		Info: schemas.PluginInfo{
			Type:        schemas.PluginTypeVulnDetection,
			Name:        pluginName,
			Version:     "0.1",
			Description: "Detects OS command injection in web debug endpoints via planted payload execution.",
		},
		ForWebService: true,
	}
}

func (d *detector) Detect(ctx context.Context, target schemas.TargetInfo, services []schemas.NetworkService) ([]schemas.DetectionReport, error) {
	pl, err := d.payloads.Generate(payload.Config{
		VulnerabilityType:         payload.VulnerabilityTypeReflectiveRCE,
		InterpretationEnvironment: payload.InterpretationEnvironmentLinuxShell,
		ExecutionEnvironment:      payload.ExecutionEnvironmentInterpretation,
	})
	if err != nil {
		return nil, fmt.Errorf("generating payload: %w", err)
	}

	var reports []schemas.DetectionReport
	for _, svc := range services {
		if !svc.IsWebService() {
			continue
		}
		executed, err := d.probe(ctx, svc, pl)
		if err != nil {
			d.logger.Debug("Probe failed", zap.String("service", svc.BaseURL()), zap.Error(err))
			continue
		}
		if executed {
			reports = append(reports, d.buildReport(target, svc))
		}
	}
	return reports, nil
}

// probe injects the payload into the suspect parameter and validates
// execution with the payload's own validator.
func (d *detector) probe(ctx context.Context, svc schemas.NetworkService, pl *payload.Payload) (bool, error) {
	injected := fmt.Sprintf("127.0.0.1;%s", pl.String())
	probeURL := fmt.Sprintf("%s%s?%s=%s",
		svc.BaseURL(), vulnerablePath, vulnerableParam, url.QueryEscape(injected))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, err
	}

	if pl.UsesCallbackServer() {
		// Give the injected command time to reach the callback server.
		select {
		case <-time.After(oobWait):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return pl.CheckIfExecuted(ctx, body)
}

func (d *detector) buildReport(target schemas.TargetInfo, svc schemas.NetworkService) schemas.DetectionReport {
	// A report is only built after the payload validator fired, and a fired
	// validator is proof of execution whether it came from an out-of-band
	// callback or an in-band echo.
	return schemas.DetectionReport{
		TargetInfo: target,
		Service:    svc,
		Timestamp:  time.Now().UTC(),
		Status:     schemas.DetectionStatusVerified,
		Vulnerability: &schemas.Vulnerability{
			ID: schemas.VulnerabilityID{
				Publisher: "GOOGLE",
				Value:     "SHELL_COMMAND_INJECTION",
			},
			Severity:    schemas.SeverityCritical,
			Title:       "OS Command Injection",
			Description: "The debug endpoint passes a request parameter to a system shell without sanitization, allowing arbitrary command execution.",
			Recommendation: "Never interpolate request data into shell commands; use parameterized " +
				"process execution and strict input validation.",
		},
	}
}
