// File: internal/detectors/exposedui/detector.go

// Package exposedui detects Jupyter Notebook instances whose web UI is
// reachable without authentication. An exposed notebook hands out arbitrary
// code execution through its terminal feature.
package exposedui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wisdark/tsunami-security-scanner/api/schemas"
	"github.com/wisdark/tsunami-security-scanner/internal/network"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
)

const pluginName = "ExposedJupyterNotebookDetector"

// uiMarker appears in the notebook tree page only when the UI renders
// without a login redirect.
const uiMarker = "Jupyter Notebook"

// maxBodyBytes caps how much of a response body the probe reads.
const maxBodyBytes = 1 << 20

// Register adds this detector to the registry. Called by the plugin catalog
// during startup discovery.
func Register(r *plugin.Registry) error {
	return r.Add(pluginName, func(deps plugin.Deps) (schemas.VulnDetector, error) {
		if deps.HTTPClient == nil {
			return nil, fmt.Errorf("http client is required")
		}
		return &detector{
			httpClient: deps.HTTPClient,
			logger:     deps.Logger.Named("exposedui"),
		}, nil
	})
}

type detector struct {
	httpClient *network.Client
	logger     *zap.Logger
}

func (d *detector) Definition() schemas.PluginDefinition {
	return schemas.PluginDefinition{
		Info: schemas.PluginInfo{
			Type:        schemas.PluginTypeVulnDetection,
			Name:        pluginName,
			Version:     "0.1",
			Description: "Detects Jupyter Notebook web UIs reachable without authentication.",
		},
		ForWebService: true,
	}
}

func (d *detector) Detect(ctx context.Context, target schemas.TargetInfo, services []schemas.NetworkService) ([]schemas.DetectionReport, error) {
	var reports []schemas.DetectionReport
	for _, svc := range services {
		if !svc.IsWebService() {
			continue
		}
		vulnerable, err := d.isUIExposed(ctx, svc)
		if err != nil {
			// An unreachable service is not a finding; keep probing the rest.
			d.logger.Debug("Probe failed", zap.String("service", svc.BaseURL()), zap.Error(err))
			continue
		}
		if vulnerable {
			reports = append(reports, d.buildReport(target, svc))
		}
	}
	return reports, nil
}

// isUIExposed fetches the notebook tree page and checks that it renders the
// UI rather than a login redirect.
func (d *detector) isUIExposed(ctx context.Context, svc schemas.NetworkService) (bool, error) {
	url := svc.BaseURL() + "/tree"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, err
	}
	page := string(body)
	return strings.Contains(page, uiMarker) && !strings.Contains(page, "login_submit"), nil
}

func (d *detector) buildReport(target schemas.TargetInfo, svc schemas.NetworkService) schemas.DetectionReport {
	return schemas.DetectionReport{
		TargetInfo: target,
		Service:    svc,
		Timestamp:  time.Now().UTC(),
		Status:     schemas.DetectionStatusPresent,
		Vulnerability: &schemas.Vulnerability{
			ID: schemas.VulnerabilityID{
				Publisher: "GOOGLE",
				Value:     "JUPYTER_NOTEBOOK_EXPOSED_UI",
			},
			Severity:    schemas.SeverityCritical,
			Title:       "Jupyter Notebook Exposed UI",
			Description: "The Jupyter Notebook web UI is reachable without authentication. The built-in terminal grants arbitrary code execution on the host.",
			Recommendation: "Enable token or password authentication, or bind the notebook " +
				"server to localhost and access it through an SSH tunnel.",
		},
	}
}
