// File: internal/service/service.go

// Package service exposes the assembled plugin set as the PluginService RPC
// servicer: list hosted plugin definitions, and dispatch a run request to
// the matching detector instances.
package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wisdark/tsunami-security-scanner/api/schemas"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
)

// PluginService implements the PluginService RPC surface over a built
// plugin set. It owns no call concurrency of its own beyond fanning one Run
// request out to its matched detectors; parallelism across RPC calls is the
// server's worker pool.
type PluginService struct {
	plugins     *plugin.Set
	concurrency int
	logger      *zap.Logger
}

// NewPluginService wraps a plugin set in a servicer. concurrency bounds how
// many detectors a single Run request executes in parallel.
func NewPluginService(plugins *plugin.Set, concurrency int, logger *zap.Logger) (*PluginService, error) {
	if plugins == nil {
		return nil, fmt.Errorf("plugin set cannot be nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be a positive integer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginService{
		plugins:     plugins,
		concurrency: concurrency,
		logger:      logger.Named("plugin-service"),
	}, nil
}

// ListPlugins returns every hosted plugin definition in registration order.
// It has no side effects and is idempotent across calls.
func (s *PluginService) ListPlugins(_ context.Context, _ *schemas.ListPluginsRequest) (*schemas.ListPluginsResponse, error) {
	return &schemas.ListPluginsResponse{Plugins: s.plugins.Definitions()}, nil
}

// Run executes every matched plugin in the request against the target and
// aggregates their detection reports.
//
// An unknown plugin name is a client error (NotFound) raised before any
// detector runs. A detector that errors or panics mid-scan is contained: the
// failure is logged, its reports are dropped, and the remaining detectors'
// reports are still returned.
func (s *PluginService) Run(ctx context.Context, req *schemas.RunRequest) (*schemas.RunResponse, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("Received Run request", zap.Int("matched_plugins", len(req.Plugins)))

	// Resolve every requested plugin up front so a bad name fails the call
	// before any detector does work.
	type dispatch struct {
		detector schemas.VulnDetector
		name     string
		services []schemas.NetworkService
	}
	dispatches := make([]dispatch, 0, len(req.Plugins))
	for _, matched := range req.Plugins {
		name := matched.Plugin.Name()
		detector, ok := s.plugins.Lookup(name)
		if !ok {
			logger.Warn("Run requested unknown plugin", zap.String("plugin", name))
			return nil, status.Errorf(codes.NotFound, "plugin %q is not hosted by this server", name)
		}
		dispatches = append(dispatches, dispatch{detector: detector, name: name, services: matched.Services})
	}

	var (
		mu      sync.Mutex
		reports []schemas.DetectionReport
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, d := range dispatches {
		group.Go(func() error {
			results, err := s.runDetector(groupCtx, d.detector, req.Target, d.services, logger)
			if err != nil {
				// A failing detector is a scan-level failure, not an
				// RPC failure.
				logger.Error("Plugin execution failed",
					zap.String("plugin", d.name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			reports = append(reports, results...)
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = group.Wait()

	logger.Info("Run request complete", zap.Int("reports", len(reports)))
	return &schemas.RunResponse{Reports: reports}, nil
}

// runDetector invokes one detector with panic containment. A panicking
// detector must not kill the serving worker.
func (s *PluginService) runDetector(
	ctx context.Context,
	detector schemas.VulnDetector,
	target schemas.TargetInfo,
	services []schemas.NetworkService,
	logger *zap.Logger,
) (reports []schemas.DetectionReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			reports = nil
			err = fmt.Errorf("detector panicked: %v\n%s", r, debug.Stack())
		}
	}()

	name := detector.Definition().Info.Name
	logger.Info("Running plugin", zap.String("plugin", name))
	return detector.Detect(ctx, target, services)
}
