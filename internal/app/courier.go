package app

import (
	"context"
	"fmt"
	"time"

	"github.com/contentops-hq/pulp-courier/internal/config"
	"github.com/contentops-hq/pulp-courier/internal/logger"
	"github.com/contentops-hq/pulp-courier/internal/monitor"
	"github.com/contentops-hq/pulp-courier/internal/storage"
	"github.com/contentops-hq/pulp-courier/pkg/httpclient"
	"github.com/contentops-hq/pulp-courier/pkg/publishers"
	"github.com/contentops-hq/pulp-courier/pkg/servers"
)

// Courier represents the watcher runtime. It manages the poll loop,
// coordinating between the server registry, the monitor service, and
// publishers. It also handles storage initialization and cleanup.
type Courier struct {
	cfg          *config.Config
	serverReg    *servers.Registry
	fanout       *publishers.Fanout
	monitorSvc   *monitor.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewCourier builds a courier runtime from config files.
func NewCourier(ctx context.Context, cfg *config.Config, log logger.Logger) (*Courier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serverReg, err := servers.LoadRegistry(cfg.ServersFile)
	if err != nil {
		return nil, fmt.Errorf("load servers registry: %w", err)
	}
	serverList := serverReg.All()
	serverIDs := make([]string, 0, len(serverList))
	for _, s := range serverList {
		serverIDs = append(serverIDs, s.ID)
	}
	log.InfoObj("servers registry loaded", "servers_meta", map[string]any{
		"count": len(serverIDs),
		"ids":   serverIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubRegistry := publishers.DefaultRegistry()
	pubClients, err := publishers.BuildAll(ctx, pubRegistry, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		TaskTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"task_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		Username:  cfg.PulpUsername,
		Password:  cfg.PulpPassword,
		UserAgent: cfg.AppName,
	})
	monitorSvc := monitor.NewService(client, fanout, store, log, cfg.TasksPageLimit)

	return &Courier{
		cfg:          cfg,
		serverReg:    serverReg,
		fanout:       fanout,
		monitorSvc:   monitorSvc,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (c *Courier) Run(ctx context.Context) error {
	if c == nil || c.monitorSvc == nil {
		return fmt.Errorf("courier is not initialized")
	}
	defer c.closeStore()

	watched := c.serverReg.All()
	if len(watched) == 0 {
		c.log.WarnObj("no servers configured; courier idle", "servers_file", c.cfg.ServersFile)
		<-ctx.Done()
		return ctx.Err()
	}

	c.log.InfoObj("courier loop starting", "courier_state", map[string]any{
		"servers_count":    len(watched),
		"publishers_count": c.fanout.Size(),
		"poll_interval":    c.pollInterval.String(),
	})

	if err := c.runOnce(ctx, watched); err != nil {
		c.log.ErrorObj("initial watch pass failed", "error", err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("courier loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx, watched); err != nil {
				c.log.ErrorObj("scheduled watch pass failed", "error", err)
			}
		}
	}
}

// runOnce performs a single watch pass across all servers.
func (c *Courier) runOnce(ctx context.Context, watched []servers.Server) error {
	start := time.Now()
	c.log.InfoObj("watch pass started", "pass_meta", map[string]any{
		"servers_count": len(watched),
		"started_at":    start.UTC(),
	})
	if err := c.monitorSvc.Run(ctx, watched); err != nil {
		return err
	}
	c.log.InfoObj("watch pass completed", "pass_meta", map[string]any{
		"servers_count": len(watched),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (c *Courier) closeStore() {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.log.ErrorObj("storage close failed", "error", err)
	}
}
