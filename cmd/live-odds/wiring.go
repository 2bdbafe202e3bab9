package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/datasource"
	"github.com/yourusername/live-odds/internal/notify"
	"github.com/yourusername/live-odds/internal/provider"
	"github.com/yourusername/live-odds/internal/service"
	"github.com/yourusername/live-odds/internal/storage"
)

// dependencies holds the ingestion components shared by every command
type dependencies struct {
	store        *storage.FileStore
	orchestrator *service.Orchestrator
	catalogue    *service.CatalogueService
	redis        *redis.Client

	clients []*datasource.RateLimitedHTTPClient
}

func buildDependencies(cfg *config.Config, log *logrus.Logger, broadcaster service.Broadcaster) (*dependencies, error) {
	deps := &dependencies{
		store: storage.NewFileStore(cfg.Storage.CataloguePath(), cfg.Storage.LivePath()),
	}

	proxyURL := ""
	if cfg.Provider.UseProxy {
		proxyURL = cfg.Provider.ResolveProxyURL()
		if proxyURL == "" {
			log.Warn("Proxy enabled but no proxy URL or scraper key configured, connecting directly")
		}
	}

	// The event fetcher owns its retry loop, so its client makes one attempt.
	eventHTTP, err := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:       cfg.Provider.RequestTimeout(),
		RateLimit:     cfg.Provider.RateLimitPerSecond,
		ProxyURL:      proxyURL,
		SingleAttempt: true,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event http client: %w", err)
	}
	deps.clients = append(deps.clients, eventHTTP)

	listCfg := datasource.DefaultHTTPClientConfig()
	listCfg.Timeout = cfg.Provider.ListTimeout()
	listCfg.MaxRetries = cfg.Provider.MaxRetries
	listCfg.RateLimit = cfg.Provider.RateLimitPerSecond
	listCfg.ProxyURL = proxyURL
	listHTTP, err := datasource.NewRateLimitedHTTPClient(listCfg, log)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create listing http client: %w", err)
	}
	deps.clients = append(deps.clients, listHTTP)

	fetcher := provider.NewClient(eventHTTP, provider.ClientConfigFrom(cfg.Provider), log)
	lister := provider.NewCatalogueClient(listHTTP, cfg.Provider, log)
	deps.catalogue = service.NewCatalogueService(lister, deps.store, log)

	targets, err := deps.buildNotifiers(cfg, log)
	if err != nil {
		deps.Close()
		return nil, err
	}

	var opts []service.OrchestratorOption
	if targets.Enabled() {
		opts = append(opts, service.WithNotifier(targets))
	}
	if broadcaster != nil {
		opts = append(opts, service.WithBroadcaster(broadcaster))
	}

	deps.orchestrator = service.NewOrchestrator(
		deps.store,
		fetcher,
		deps.store,
		service.OrchestratorConfigFrom(cfg.Ingestion),
		log,
		opts...,
	)
	return deps, nil
}

func (d *dependencies) buildNotifiers(cfg *config.Config, log *logrus.Logger) (notify.Multi, error) {
	var targets notify.Multi

	if cfg.Webhook.URL != "" {
		webhookHTTP, err := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
			Timeout:       cfg.Webhook.WebhookTimeout(),
			SingleAttempt: true,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook http client: %w", err)
		}
		d.clients = append(d.clients, webhookHTTP)
		targets = append(targets, notify.NewWebhook(webhookHTTP, cfg.Webhook.URL, cfg.Webhook.WebhookTimeout()))
		log.WithField("url", cfg.Webhook.URL).Info("Webhook push enabled")
	}

	if cfg.Redis.Enabled {
		d.redis = notify.NewRedisClient(cfg.Redis)
		targets = append(targets, notify.NewRedisPublisher(d.redis, cfg.Redis.Stream))
		log.WithFields(logrus.Fields{
			"addr":   cfg.Redis.Addr,
			"stream": cfg.Redis.Stream,
		}).Info("Redis stream push enabled")
	}

	return targets, nil
}

// Close releases outbound connections
func (d *dependencies) Close() {
	for _, c := range d.clients {
		c.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}
