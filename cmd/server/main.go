/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the scenario game server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config (file, then SCENARIO_* env)
  2. Load the scenario catalog (folder, or the built-in default)
  3. Open the SQLite archive when a database path is configured
  4. Create API handler, router and idle-session janitor
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (default: config.yaml, optional)
  -addr    Overrides server.addr
  -db      Overrides database.path; ":memory:" for an in-memory archive
  -reset-archive  Clear every archived session before serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the janitor
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - config/config.go: Configuration fields and environment variables
  - api/server.go: Router configuration
  - catalog/load.go: Catalog folder loading
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/scenario-engine/api"
	"github.com/warp/scenario-engine/catalog"
	"github.com/warp/scenario-engine/config"
	"github.com/warp/scenario-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "config.yaml", "YAML config path")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite archive path (overrides config)")
	resetArchive := flag.Bool("reset-archive", false, "clear archived sessions on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Archive is optional
	var archive api.Archive = api.NoopArchive{}
	if cfg.Database.Path != "" {
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()
		if *resetArchive {
			if err := store.Reset(context.Background()); err != nil {
				log.Fatalf("Failed to reset archive: %v", err)
			}
			log.Printf("[Server] Archive cleared")
		}
		archive = store
		log.Printf("[Server] Archiving sessions to %s", cfg.Database.Path)
	}

	handler := api.NewHandler(cat, cfg.Engine, archive)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	janitor, err := api.NewJanitor(handler.Sessions, cfg.Sessions.IdleTimeout, cfg.Sessions.SweepSpec)
	if err != nil {
		log.Fatalf("Failed to schedule janitor: %v", err)
	}
	janitor.Start()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("[Server] Listening on %s with %d scenarios", cfg.Server.Addr, cat.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")
	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[Server] Stopped")
}
