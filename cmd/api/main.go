package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tsubasa0119/repo-insights/internal/aggregator"
	"github.com/tsubasa0119/repo-insights/internal/api"
	"github.com/tsubasa0119/repo-insights/internal/config"
	"github.com/tsubasa0119/repo-insights/internal/fetcher"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize the upstream fetcher with its read-through cache
	upstream := fetcher.NewGitHub(cfg.GitHubToken, cfg.FetchTimeout)
	cached := fetcher.NewCached(upstream, cfg.CacheTTL)

	// Initialize aggregator
	agg := aggregator.New(cached)

	// Initialize handler
	handler := api.NewHandler(agg)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	fmt.Printf("Starting API server on %s\n", addr)
	if cfg.GitHubToken == "" {
		fmt.Println("No GITHUB_TOKEN set; running against the unauthenticated quota")
	}

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
