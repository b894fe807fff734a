package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/config"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/cty"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/db"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/logging"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/redisclient"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/resolve"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/web"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/version"
)

func main() {
	status := RunApplication(context.Background(), os.Args[1:])
	if status != 0 {
		os.Exit(status)
	}
}

// liveLookup resolves against whichever tables are currently published.
// Refreshes swap the table pointers, so a fresh Resolver per call always
// sees a consistent pair without locking.
type liveLookup struct {
	cty *cty.Client
}

func (l *liveLookup) Resolve(callsign string) entity.FullEntityInfo {
	return resolve.New(l.cty.DxccTable(), l.cty.WaeTable()).Resolve(callsign)
}

// RunApplication runs the application logic and returns an exit code.
// Tests call this function directly to start the app in-process.
func RunApplication(ctx context.Context, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		return 1
	}
	logging.SetLevelFromString(cfg.LogLevel)

	logging.Notice("%s %s starting.", version.ProjectName, version.ProjectVersion)
	logging.Info("Data directory: %s", cfg.DataDir)
	logging.Info("Country-file sources: %s / %s", cfg.CtyURL, cfg.WAEURL)

	if len(args) > 0 && strings.ToLower(args[0]) == "healthcheck" {
		fmt.Println("Health check successful")
		return 0
	}

	rdb := initializeRedis(ctx, cfg)
	defer func() {
		if rdb != nil {
			rdb.Close()
		}
	}()

	ctyClient, err := initializeCty(ctx, cfg)
	if err != nil {
		logging.Crit("Failed to initialize country-file data: %v", err)
		return 1
	}
	defer ctyClient.Close()

	ctyClient.StartUpdater(ctx)

	router := setupHTTPRouter(cfg)
	web.SetupRoutes(router.Group(cfg.BaseURL), &liveLookup{cty: ctyClient}, ctyClient, rdb, cfg.Redis.LookupExpiry)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebPort),
		Handler: router,
	}

	go func() {
		logging.Notice("HTTP API listening on port %d (base URL %s).", cfg.WebPort, cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Crit("HTTP server failed: %v", err)
			cancel()
		}
	}()

	// Wait for shutdown signal or context cancellation.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logging.Notice("Received signal %s, shutting down.", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("HTTP server shutdown: %v", err)
		return 1
	}

	logging.Notice("Shutdown complete.")
	return 0
}

// initializeRedis connects the optional lookup cache; a failure degrades to
// uncached operation rather than aborting startup.
func initializeRedis(ctx context.Context, cfg *config.Config) *redisclient.Client {
	rdb, err := redisclient.NewClient(ctx, cfg.Redis)
	if err != nil {
		logging.Warn("Redis cache unavailable, continuing without it: %v", err)
		return nil
	}
	if rdb != nil {
		logging.Notice("Redis lookup cache connected (%s:%s).", cfg.Redis.Host, cfg.Redis.Port)
	}
	return rdb
}

// initializeCty opens the SQLite cache and ensures both country-file
// editions are loaded, downloading them when missing or stale.
func initializeCty(ctx context.Context, cfg *config.Config) (*cty.Client, error) {
	dbClient, err := db.NewSQLiteClient(cfg.DataDir, cty.DBFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open country-file cache: %w", err)
	}

	ctyClient, err := cty.NewClient(ctx, *cfg, dbClient)
	if err != nil {
		dbClient.Close()
		return nil, err
	}

	needsUpdate, err := ctyClient.NeedsUpdate(ctx)
	if err != nil {
		logging.Warn("Failed to check country-file freshness, assuming update needed: %v", err)
		needsUpdate = true
	}

	if needsUpdate {
		logging.Info("Country-file data missing or stale, downloading now...")
		if err := ctyClient.FetchAndStore(ctx); err != nil {
			// A stale cache still beats no data at all.
			logging.Error("Country-file download failed: %v. Trying cached data.", err)
			if loadErr := ctyClient.LoadFromDB(ctx); loadErr != nil {
				ctyClient.Close()
				return nil, fmt.Errorf("no usable country-file data: %w", loadErr)
			}
		}
	} else {
		if err := ctyClient.LoadFromDB(ctx); err != nil {
			ctyClient.Close()
			return nil, fmt.Errorf("failed to load cached country-file data: %w", err)
		}
	}

	if ctyClient.DxccTable().Len() == 0 {
		ctyClient.Close()
		return nil, fmt.Errorf("DXCC prefix table is empty after initialization")
	}

	return ctyClient, nil
}

// setupHTTPRouter builds the gin engine with request logging at DEBUG.
func setupHTTPRouter(cfg *config.Config) *gin.Engine {
	if logging.Level < logging.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	})
	return router
}
