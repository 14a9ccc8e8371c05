package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/enrichman/httpgrace"

	"github.com/fleetrent/fleetrent/internal/api/route"
	appctx "github.com/fleetrent/fleetrent/internal/app"
	"github.com/fleetrent/fleetrent/internal/cache"
	"github.com/fleetrent/fleetrent/internal/config"
	"github.com/fleetrent/fleetrent/internal/connectivity"
	"github.com/fleetrent/fleetrent/internal/listing"
	"github.com/fleetrent/fleetrent/internal/localstore"
	"github.com/fleetrent/fleetrent/internal/logger"
	"github.com/fleetrent/fleetrent/internal/settings"
	"github.com/fleetrent/fleetrent/internal/store"
	"github.com/fleetrent/fleetrent/internal/store/migrations"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	// Set log level from configuration
	logLevel, err := logrus.ParseLevel(cfg.Misc.LogLevel)
	if err != nil {
		logger.WithComponent("main").Warnf("invalid log level '%s', using 'info': %v", cfg.Misc.LogLevel, err)
		logLevel = logrus.InfoLevel
	}
	logger.Logger.SetLevel(logLevel)
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	bootCtx := context.Background()

	pool, err := store.Connect(bootCtx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot connect to database: %v", err)
	}
	if err := migrations.RunUp(bootCtx, pool); err != nil {
		logger.WithComponent("main").Fatalf("cannot apply migrations: %v", err)
	}
	client := store.NewClient(pool)

	local, err := localstore.Open(cfg.Fallback.Path)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot open fallback store: %v", err)
	}

	queryCache := cache.NewStore()
	observer := connectivity.NewObserver(client, cfg.Database.ProbeInterval)
	resolver := settings.NewResolver(client, local, observer)
	listSvc := listing.NewService(client, queryCache, cfg.Cache)

	app, err := appctx.New(cfg, client, queryCache, local, observer, resolver, listSvc)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	app.StartBackground()

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := route.SetupRoutes(app, logger.Logger)
	srv := createGraceHTTPServer(app.BaseCtx, "api-server", cfg.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

func createGraceHTTPServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
