package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"sea-route-server/config"
	"sea-route-server/handlers"
	"sea-route-server/logger"
	"sea-route-server/preprocessing"
	"sea-route-server/services"
	"sea-route-server/store"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Config", err.Error())
	}
	logger.SetLevel(level)
	logger.Banner(version)

	source, closeSource, err := openSource(cfg)
	if err != nil {
		logger.Errorf("Data", "Failed to open data source: %v", err)
		os.Exit(1)
	}
	defer closeSource()

	logger.Section("Loading route network")
	routingService := services.NewRoutingService(source, cfg.SearchTimeout)
	snap, err := routingService.Reload(context.Background())
	if err != nil {
		logger.Errorf("Data", "Failed to load required route data: %v", err)
		os.Exit(1)
	}
	stats := snap.Stats()
	logger.Stats("Catalog ports", stats.CatalogPorts)
	logger.Stats("Network ports", stats.NetworkPorts)
	logger.Stats("Segments", stats.Segments)
	logger.Stats("Skipped records", stats.Skipped)

	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(handlers.RequestID())
	handlers.NewRouteHandler(routingService).RegisterRoutes(r)

	api := &http.Server{Addr: ":" + *port, Handler: r}

	var admin *http.Server
	if cfg.AdminAddr != "" {
		router := mux.NewRouter()
		handlers.NewAdminHandler(routingService).RegisterRoutes(router)
		admin = &http.Server{Addr: cfg.AdminAddr, Handler: router}
		go serve("Admin", admin)
	}
	go serve("API", api)

	logger.Section("Ready")
	logger.Info("API", fmt.Sprintf("Sea Route Server listening on :%s", *port))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range sigs {
		if sig == syscall.SIGHUP {
			logger.Info("Network", "SIGHUP received, reloading")
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			routingService.Reload(ctx)
			cancel()
			continue
		}
		break
	}

	logger.Info("API", "Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		logger.Errorf("API", "Shutdown: %v", err)
	}
	if admin != nil {
		admin.Shutdown(ctx)
	}
}

func serve(tag string, srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(tag, fmt.Sprintf("Failed to start server on %s: %v", srv.Addr, err))
		os.Exit(1)
	}
}

// openSource picks the reference data source named by DATA_SOURCE. The
// returned func releases it.
func openSource(cfg config.Config) (preprocessing.Source, func(), error) {
	switch cfg.DataSource {
	case config.SourceSnapshot:
		return preprocessing.SnapshotSource{Path: cfg.SnapshotPath()}, func() {}, nil
	case config.SourceSQLite:
		db, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	default:
		return preprocessing.FileSource{PortsPath: cfg.PortsPath(), RoutesPath: cfg.RoutesPath()}, func() {}, nil
	}
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.DefaultConfig()
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", handlers.RequestIDHeader}
	c.ExposeHeaders = []string{handlers.RequestIDHeader}
	return c
}
