// Exposure Core - exposure resolution engine
//
// This is the main entry point for the Exposure Core service. It
// decides, per entity, whether a third-party voice-assistant bridge may
// see it: layered bulk rules, per-item overrides with device/entity
// propagation, preview, validation, and a managed YAML artifact the
// bridge consumes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/hearthward/exposure-core/migrations"

	"github.com/hearthward/exposure-core/internal/api"
	"github.com/hearthward/exposure-core/internal/artifact"
	"github.com/hearthward/exposure-core/internal/exposure"
	"github.com/hearthward/exposure-core/internal/infrastructure/config"
	"github.com/hearthward/exposure-core/internal/infrastructure/database"
	"github.com/hearthward/exposure-core/internal/infrastructure/logging"
	"github.com/hearthward/exposure-core/internal/infrastructure/metrics"
	"github.com/hearthward/exposure-core/internal/infrastructure/mqtt"
	"github.com/hearthward/exposure-core/internal/topology"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Exposure Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Restore the topology mirror so the service is usable before the
	// host republishes a snapshot.
	registry := topology.NewRegistry(topology.NewSQLiteRepository(db.DB), cfg.Exposure.SupportedDomains)
	if restoreErr := registry.Restore(ctx); restoreErr != nil {
		return fmt.Errorf("restoring topology: %w", restoreErr)
	}
	snap := registry.Snapshot()
	log.Info("topology restored",
		"entities", len(snap.Entities),
		"devices", len(snap.Devices),
		"areas", len(snap.Areas),
	)

	// Load the latest configuration revision; a fresh install starts
	// from the default domain inclusions.
	store := exposure.NewSQLiteStore(db.DB)
	persisted, revision, err := store.LoadLatest(ctx)
	if errors.Is(err, exposure.ErrNoRevisions) {
		persisted = exposure.NewConfig(cfg.Exposure.DefaultExposeDomains)
		log.Info("no configuration history, starting fresh",
			"expose_domains", cfg.Exposure.DefaultExposeDomains,
		)
	} else if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	} else {
		log.Info("configuration loaded from history", "revision", revision)
	}
	session := exposure.NewSession(persisted)

	// Artifact manager for the generated YAML and foreign-config import
	artifacts := artifact.NewManager(cfg.Artifact)
	if artifacts.ForeignExists() {
		log.Info("foreign assistant configuration found, migration available",
			"path", cfg.Artifact.ForeignFile,
		)
	}

	// Connect to MQTT broker (optional): topology snapshots in, save
	// notifications out.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if subErr := subscribeTopology(ctx, mqttClient, registry, log); subErr != nil {
			return fmt.Errorf("subscribing to topology snapshots: %w", subErr)
		}
	} else {
		log.Info("MQTT disabled, topology updates via PUT /topology only")
	}

	// Connect to InfluxDB (optional)
	var metricsClient *metrics.Client
	if cfg.InfluxDB.Enabled {
		metricsClient, err = metrics.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := metricsClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		metricsClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:               cfg.API,
		WS:                   cfg.WebSocket,
		Security:             cfg.Security,
		Logger:               log,
		Registry:             registry,
		Session:              session,
		Store:                store,
		Artifacts:            artifacts,
		MQTT:                 mqttClient,
		Metrics:              metricsClient,
		SiteID:               cfg.Site.ID,
		DefaultExposeDomains: cfg.Exposure.DefaultExposeDomains,
		Version:              version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, metricsClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Exposure Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses EXPOSURE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("EXPOSURE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// subscribeTopology feeds host-published topology snapshots into the
// registry, then requests a fresh snapshot so a newly started service
// does not wait for the host's next periodic publish.
func subscribeTopology(ctx context.Context, client *mqtt.Client, registry *topology.Registry, log *logging.Logger) error {
	topics := mqtt.Topics{}

	err := client.Subscribe(topics.TopologySnapshot(), 1, func(_ string, payload []byte) error {
		if updateErr := registry.UpdateFromJSON(ctx, payload); updateErr != nil {
			log.Warn("rejected topology snapshot", "error", updateErr)
			return nil
		}
		snap := registry.Snapshot()
		log.Info("topology snapshot applied",
			"entities", len(snap.Entities),
			"devices", len(snap.Devices),
			"areas", len(snap.Areas),
		)
		return nil
	})
	if err != nil {
		return err
	}

	if err := client.PublishEvent(topics.TopologyRequest(), []byte(`{}`)); err != nil {
		log.Warn("topology request publish failed", "error", err)
	}
	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
// MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, metricsClient *metrics.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if metricsClient != nil && !metricsClient.IsConnected() {
		return fmt.Errorf("influxdb: not connected")
	}

	return nil
}
