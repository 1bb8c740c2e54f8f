// Package api provides the HTTP REST API and WebSocket server for
// Exposure Core.
//
// It exposes the topology, the pending configuration session, preview
// and save operations, and real-time change events to management
// frontends.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hearthward/exposure-core/internal/artifact"
	"github.com/hearthward/exposure-core/internal/exposure"
	"github.com/hearthward/exposure-core/internal/infrastructure/config"
	"github.com/hearthward/exposure-core/internal/infrastructure/logging"
	"github.com/hearthward/exposure-core/internal/infrastructure/metrics"
	"github.com/hearthward/exposure-core/internal/infrastructure/mqtt"
	"github.com/hearthward/exposure-core/internal/topology"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Registry  *topology.Registry
	Session   *exposure.Session
	Store     exposure.Store
	Artifacts *artifact.Manager
	MQTT      *mqtt.Client    // optional: save notifications
	Metrics   *metrics.Client // optional: exposure summary points

	SiteID               string
	DefaultExposeDomains []string
	Version              string
}

// Server is the HTTP API server for Exposure Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	registry  *topology.Registry
	session   *exposure.Session
	store     exposure.Store
	artifacts *artifact.Manager
	mqtt      *mqtt.Client
	metrics   *metrics.Client

	siteID         string
	defaultDomains []string
	version        string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc // cancels background goroutines on Close()

	// migrationDone records that the foreign-config migration was
	// imported or explicitly skipped this process lifetime.
	migrationMu   sync.Mutex
	migrationDone bool
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called. MQTT and metrics
// clients are optional; everything else is required.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("topology registry is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("exposure session is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("revision store is required")
	}
	if deps.Artifacts == nil {
		return nil, fmt.Errorf("artifact manager is required")
	}

	return &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		secCfg:         deps.Security,
		logger:         deps.Logger,
		registry:       deps.Registry,
		session:        deps.Session,
		store:          deps.Store,
		artifacts:      deps.Artifacts,
		mqtt:           deps.MQTT,
		metrics:        deps.Metrics,
		siteID:         deps.SiteID,
		defaultDomains: deps.DefaultExposeDomains,
		version:        deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, hooks topology updates into the hub so
// clients see registry changes live, and launches the HTTP listener in
// a background goroutine. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Relay registry updates (MQTT snapshots or PUT /topology) to
	// subscribed WebSocket clients.
	s.registry.SetOnUpdate(func(snap *topology.Snapshot) {
		s.hub.Broadcast(ChannelTopologyUpdated, map[string]any{
			"entities": len(snap.Entities),
			"devices":  len(snap.Devices),
			"areas":    len(snap.Areas),
		})
	})

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// migrationAvailable reports whether a foreign configuration exists and
// has not yet been imported or skipped.
func (s *Server) migrationAvailable() bool {
	s.migrationMu.Lock()
	done := s.migrationDone
	s.migrationMu.Unlock()
	return !done && s.artifacts.ForeignExists()
}

// markMigrationDone records that the migration decision has been made.
func (s *Server) markMigrationDone() {
	s.migrationMu.Lock()
	s.migrationDone = true
	s.migrationMu.Unlock()
}
