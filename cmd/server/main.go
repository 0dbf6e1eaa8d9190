/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the OpenSAM license analytics server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (defaults, config.toml, .env, environment)
  2. Parse command-line flags (override config)
  3. Initialize the SQLite session store
  4. Load the initial dataset (data dir CSVs, demo fixture, or empty)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port
  -db       SQLite session store path (":memory:" keeps nothing)
  -data     directory holding licenses/installations/users CSVs
  -demo     start with the seeded demo estate instead of CSVs
  -by-user  count seats by distinct user instead of distinct device

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the session store
  4. Exit

EXAMPLES:
  # Analyze a CSV estate
  ./server -data=./data

  # Demo walkthrough, nothing touches disk
  ./server -demo -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration layers
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Session store
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/PaulSemaan007/OpenSAM/api"
	"github.com/PaulSemaan007/OpenSAM/config"
	"github.com/PaulSemaan007/OpenSAM/fixture"
	"github.com/PaulSemaan007/OpenSAM/ingest"
	"github.com/PaulSemaan007/OpenSAM/sam"
	"github.com/PaulSemaan007/OpenSAM/store/sqlite"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	// Flags override config.
	port := flag.Int("port", cfg.ServicePort, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite session store path")
	dataDir := flag.String("data", cfg.DataDir, "input CSV directory")
	demo := flag.Bool("demo", false, "start with the seeded demo estate")
	byUser := flag.Bool("by-user", cfg.CountByUser, "count seats by distinct user")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize session store")
	}
	defer store.Close()

	handler := api.NewHandler(store, *dataDir)
	handler.SetCountByUser(*byUser)
	handler.SetThresholds(cfg.Thresholds)

	if err := loadInitialDataset(store, *dataDir, *demo); err != nil {
		log.WithError(err).Fatal("failed to load initial dataset")
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServiceHost, *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

// loadInitialDataset seeds the session: the demo fixture when requested,
// otherwise the CSV directory when it exists. An absent data dir is fine;
// the store starts empty and /api/admin/reload or /api/admin/demo fills it.
func loadInitialDataset(store *sqlite.Store, dataDir string, demo bool) error {
	ctx := context.Background()

	if demo {
		log.Info("loading seeded demo estate")
		return store.Load(ctx, fixture.Acme(fixture.DefaultSeed, sam.Today()))
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		log.WithField("data_dir", dataDir).Warn("data directory not found, starting empty")
		return nil
	}

	data, warnings, err := ingest.LoadDir(dataDir)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn(w.String())
	}
	log.WithFields(log.Fields{
		"licenses":      len(data.Licenses),
		"installations": len(data.Installations),
		"users":         len(data.Users),
	}).Info("dataset loaded")

	return store.Load(ctx, data)
}
