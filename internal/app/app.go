package app

import (
	"context"
	"errors"

	"github.com/fleetrent/fleetrent/internal/cache"
	"github.com/fleetrent/fleetrent/internal/config"
	"github.com/fleetrent/fleetrent/internal/connectivity"
	"github.com/fleetrent/fleetrent/internal/listing"
	"github.com/fleetrent/fleetrent/internal/localstore"
	"github.com/fleetrent/fleetrent/internal/logger"
	"github.com/fleetrent/fleetrent/internal/settings"
	"github.com/fleetrent/fleetrent/internal/store"
)

// App is the application container (immutable dependencies + lifecycle
// context). It is not a request context; handlers should still use gin's
// request context.
type App struct {
	Config   *config.Config
	Store    *store.Client
	Cache    *cache.Store
	Local    *localstore.Store
	Conn     *connectivity.Observer
	Resolver *settings.Resolver
	Listing  *listing.Service

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, client *store.Client, qc *cache.Store, local *localstore.Store,
	conn *connectivity.Observer, resolver *settings.Resolver, svc *listing.Service) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if client == nil {
		return nil, errors.New("store client is nil")
	}
	if qc == nil {
		return nil, errors.New("query cache is nil")
	}
	if local == nil {
		return nil, errors.New("fallback store is nil")
	}
	if conn == nil {
		return nil, errors.New("connectivity observer is nil")
	}
	if resolver == nil {
		return nil, errors.New("resolver is nil")
	}
	if svc == nil {
		return nil, errors.New("listing service is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:   cfg,
		Store:    client,
		Cache:    qc,
		Local:    local,
		Conn:     conn,
		Resolver: resolver,
		Listing:  svc,
		BaseCtx:  ctx,
		Cancel:   cancel,
	}, nil
}

// StartBackground launches the connectivity probe, the cache janitor and,
// when configured, the defaults-file watcher. All stop when BaseCtx is
// canceled.
func (a *App) StartBackground() {
	a.Conn.Start(a.BaseCtx)
	a.Cache.Start()

	if path := a.Config.Settings.DefaultsFile; path != "" {
		defaults, err := settings.NewDefaultsFile(path)
		if err != nil {
			logger.WithComponent("app").Fatalf("cannot init defaults file: %v", err)
		}
		overrides, err := defaults.Load()
		if err != nil {
			logger.WithComponent("app").Warnf("cannot load defaults file: %v", err)
		} else {
			a.Resolver.ApplyDefaultOverrides(overrides)
		}
		if err := defaults.Watch(a.BaseCtx, a.Resolver); err != nil {
			logger.WithComponent("app").Fatalf("cannot start defaults watcher: %v", err)
		}
	}
}

// Shutdown cancels background work and releases resources.
func (a *App) Shutdown() {
	if a == nil {
		return
	}
	if a.Cancel != nil {
		a.Cancel()
	}
	if a.Cache != nil {
		a.Cache.Stop()
	}
	if a.Local != nil {
		if err := a.Local.Close(); err != nil {
			logger.WithComponent("app").Warnf("fallback store close: %v", err)
		}
	}
	if a.Store != nil {
		a.Store.Close()
	}
}
