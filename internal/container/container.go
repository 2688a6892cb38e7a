package container

import (
	"context"
	"fmt"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/api"
	"hypoavg/internal/config"
	"hypoavg/internal/observation"
	"hypoavg/internal/schema"

	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Schema sources
	Schemas  schema.Store
	postgres *schema.PostgresStore

	// Aggregation pipeline
	Walker      *aggregate.Walker
	Writer      *aggregate.Writer
	Engine      *aggregate.Engine
	Metrics     *aggregate.Metrics
	Coordinator *aggregate.Coordinator

	// Submission side
	Observations *observation.Store
	Events       *api.EventHub
}

// New wires every component from cfg. Metrics are registered on reg; pass nil to skip them.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{Config: cfg, Logger: logger}

	if err := c.initSchemas(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema store: %w", err)
	}
	c.initPipeline(reg)

	c.Observations = observation.NewStore(cfg.Storage.DataDir, logger)
	c.Events = api.NewEventHub(logger)
	c.Coordinator.Observe(c.Events)

	logger.Info("container initialized (data=%s, workers=%d)", cfg.Storage.DataDir, cfg.Aggregate.Workers)
	return c, nil
}

// initSchemas picks Postgres when a database URL is configured, the schema directory otherwise
func (c *Container) initSchemas(ctx context.Context) error {
	if !c.Config.Schema.UsePostgres() {
		c.Schemas = schema.NewFileStore(c.Config.Schema.Dir)
		c.Logger.Info("reading evidence schemas from %s", c.Config.Schema.Dir)
		return nil
	}

	store, err := schema.OpenPostgresStore(ctx, c.Config.Schema.DatabaseURL)
	if err != nil {
		return err
	}
	c.postgres = store
	c.Schemas = store
	c.Logger.Info("reading evidence schemas from postgres")
	return nil
}

func (c *Container) initPipeline(reg prometheus.Registerer) {
	c.Walker = aggregate.NewWalker(c.Config.Storage.DataDir, c.Logger)
	c.Writer = aggregate.NewWriter(c.Logger)
	c.Engine = aggregate.NewEngine(c.Walker, c.Schemas, c.Writer, c.Config.Aggregate.Workers, c.Logger)
	if reg != nil {
		c.Metrics = aggregate.NewMetrics(reg)
	}
	c.Coordinator = aggregate.NewCoordinator(c.Engine, c.Logger, c.Metrics)
}

// SchemaAdmin returns the writable Postgres schema store, if one is configured
func (c *Container) SchemaAdmin() (*schema.PostgresStore, bool) {
	return c.postgres, c.postgres != nil
}

// Shutdown waits for the coordinator to go idle and releases the database
func (c *Container) Shutdown(ctx context.Context) error {
	var waitErr error
	if c.Coordinator != nil {
		waitErr = c.Coordinator.WaitIdle(ctx)
	}
	if c.postgres != nil {
		if err := c.postgres.Close(); err != nil {
			return err
		}
	}
	return waitErr
}
