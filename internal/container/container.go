package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/captain-yun7/facefalcon-sub001/internal/config"
	"github.com/captain-yun7/facefalcon-sub001/internal/ledger"
	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
	"github.com/captain-yun7/facefalcon-sub001/internal/monitoring"
	"github.com/captain-yun7/facefalcon-sub001/internal/observer"
	"github.com/captain-yun7/facefalcon-sub001/internal/pricing"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider/rekognition"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider/selfhosted"
	"github.com/captain-yun7/facefalcon-sub001/internal/router"
	"github.com/captain-yun7/facefalcon-sub001/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	ledger    *ledger.UsageLedger
	engine    *router.HybridRouter
	facade    *monitoring.Facade
	publisher *observer.EventPublisher
	handler   http.Handler
}

// NewContainer builds the dependency graph: adapters, ledger, pricing,
// router, monitoring facade and the HTTP handler.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	clock := ledger.SystemClock{}
	usageLedger := ledger.New(clock)
	prices := pricing.DefaultPriceTable()

	cloudProvider, err := rekognition.New(ctx, rekognition.Options{
		Region:  cfg.AWSRegion,
		Timeout: cfg.RekognitionTimeout,
		Workers: cfg.FindSimilarWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rekognition adapter: %w", err)
	}
	selfHostedProvider := selfhosted.New(cfg.SelfHostedBaseURL, cfg.SelfHostedTimeout)
	registry := provider.NewRegistry(cloudProvider, selfHostedProvider)

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewUsageObserver(usageLedger))
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(observer.NewMetricsObserver())

	policy := router.Policy{
		DefaultProvider: cfg.DefaultProvider,
		DailyBudgetUSD:  cfg.DailyBudgetUSD,
		Overrides:       cfg.OperationOverrides,
	}
	engine := router.New(registry, policy, usageLedger, prices, publisher)

	// Reconciliation is best-effort; the local surface works without it
	remote, err := monitoring.NewAWSMonitor(ctx, cfg.AWSRegion)
	if err != nil {
		logger.WithError(err).Warn("AWS monitoring unavailable, continuing with local accounting only")
		remote = nil
	}
	facade := monitoring.New(usageLedger, prices, clock, remoteOrNil(remote))

	handler := transport.NewHandler(engine, facade, cfg)

	return &Container{
		config:    cfg,
		ledger:    usageLedger,
		engine:    engine,
		facade:    facade,
		publisher: publisher,
		handler:   handler,
	}, nil
}

// remoteOrNil avoids storing a typed-nil interface in the facade
func remoteOrNil(remote *monitoring.AWSMonitor) monitoring.RekognitionMonitor {
	if remote == nil {
		return nil
	}
	return remote
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Flush drains in-flight usage recordings, used on shutdown.
func (c *Container) Flush() {
	c.publisher.Flush()
}
