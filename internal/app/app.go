// Package app wires the storefront components from a loaded configuration.
// Both the HTTP server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/config"
	"github.com/imrishuroy/go-storefront/internal/storage"
	"github.com/redis/go-redis/v9"
)

// App holds the wired collaborators.
type App struct {
	Config   config.Config
	Store    *storage.Store
	Catalog  *catalog.Client
	Cart     *cart.Engine
	Metrics  aws.Recorder
	Notifier checkout.Notifier // nil unless ORDERS_QUEUE_URL is set
	Policy   checkout.AmountPolicy

	closers []func() error
}

// New builds the store backend, catalog client, cart engine and the optional
// AWS integrations. AWS config is only loaded when a component needs it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	policy, err := checkout.ParsePolicy(cfg.ZeroAmountPolicy)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Metrics: aws.NopRecorder{}, Policy: policy}

	var clients *aws.AWSClients
	awsClients := func() (*aws.AWSClients, error) {
		if clients != nil {
			return clients, nil
		}
		awsCfg, err := aws.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.AWSRegion != "" {
			awsCfg.Region = cfg.AWSRegion
		}
		clients = aws.ClientsFromConfig(awsCfg)
		return clients, nil
	}

	backend, err := a.openBackend(cfg, awsClients)
	if err != nil {
		return nil, err
	}
	a.Store = storage.New(backend)
	a.Catalog = catalog.NewClient(cfg.CatalogBaseURL, catalog.WithTimeout(cfg.CatalogTimeout))
	a.Cart = cart.NewEngine(a.Store, a.Catalog)

	if cfg.OrdersQueueURL != "" {
		c, err := awsClients()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Notifier = aws.NewPublisher(c.SQS, cfg.OrdersQueueURL)
	}
	if cfg.MetricsNamespace != "" {
		c, err := awsClients()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Metrics = aws.NewCloudWatchRecorder(c.CloudWatch, cfg.MetricsNamespace)
	}

	log.Printf("[app] store=%s catalog=%s policy=%s", cfg.StoreBackend, cfg.CatalogBaseURL, policy)
	return a, nil
}

func (a *App) openBackend(cfg config.Config, awsClients func() (*aws.AWSClients, error)) (storage.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return storage.NewMemory(), nil
	case config.BackendSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		return storage.NewRedis(client, cfg.StoreTable), nil
	case config.BackendDynamoDB:
		c, err := awsClients()
		if err != nil {
			return nil, err
		}
		return storage.NewDynamoDB(c.DynamoDB, cfg.StoreTable), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases the store backend.
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
