package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/api"
	"github.com/charliedev/reliquary/config"
	"github.com/charliedev/reliquary/internal/indexer"
	"github.com/charliedev/reliquary/internal/jobs"
	"github.com/charliedev/reliquary/internal/registry"
	"github.com/charliedev/reliquary/internal/search"
	"github.com/charliedev/reliquary/internal/store"
)

// maxRequestBytes bounds request bodies; element save notifications carry
// full field text and dominate the payload sizes seen in practice.
const maxRequestBytes = 8 << 20

func main() {
	defaults := config.DefaultSettings()
	var (
		help         = flag.Bool("help", false, "Show help message")
		port         = flag.String("port", defaults.Port, "Port to run the server on")
		dbPath       = flag.String("db", defaults.DBPath, "SQLite database path")
		minScore     = flag.Float64("min-score", defaults.MinimumScore, "Minimum relevance score kept in results")
		optionPage   = flag.Int("option-page-size", defaults.OptionPageSize, "Page size for filter option listings")
		indexWorkers = flag.Int("index-workers", defaults.IndexWorkers, "Concurrent background reindex passes")
	)

	flag.Parse()

	if *help {
		fmt.Printf("Reliquary - faceted ngram search for structured content\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000 --db /var/lib/reliquary.db\n", os.Args[0])
		return
	}

	settings := config.Settings{
		DBPath:         *dbPath,
		Port:           *port,
		MinimumScore:   *minScore,
		OptionPageSize: *optionPage,
		IndexWorkers:   *indexWorkers,
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	log.Printf("Using database: %s", settings.DBPath)
	st, err := store.Open(settings.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	writer := indexer.NewWriter(st)
	manager, err := jobs.NewManager(writer, settings.IndexWorkers)
	if err != nil {
		log.Fatalf("Failed to start job manager: %v", err)
	}
	defer manager.Stop()

	// Element and field type handlers are registered by the embedding host;
	// the standalone server starts with an empty registry.
	reg := registry.New()
	searcher := search.NewService(st, reg, &settings)

	router := gin.Default()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.RequestSizeLimitMiddleware(maxRequestBytes))
	router.Use(api.CORSMiddleware())
	api.SetupRoutes(router, searcher, manager, writer, st)

	log.Printf("Starting server on port %s...", settings.Port)
	if err := router.Run(":" + settings.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
