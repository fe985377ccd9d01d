package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/skysnoop/radarfeed/api"
	"github.com/skysnoop/radarfeed/collector"
	"github.com/skysnoop/radarfeed/config"
	"github.com/skysnoop/radarfeed/radar"
	jsonfetcher "github.com/skysnoop/radarfeed/services/json_fetcher"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load(os.Getenv("RADAR_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fetcher := jsonfetcher.New(cfg.RequestTimeout())
	session := radar.NewSession(fetcher, radar.Options{
		BaseURL:          cfg.BaseURL,
		ProbeTimeout:     cfg.ProbeTimeout(),
		ProbeConcurrency: cfg.ProbeConcurrency,
		DetailWorkers:    cfg.DetailWorkers,
	})

	// Pick a balancer host and zone before serving anything
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host, err := session.Hosts().Select(startupCtx, cfg.HostSelector)
	if err != nil {
		log.Fatalf("Failed to select feed host (%s): %v", cfg.HostSelector, err)
	}
	log.Printf("Using feed host %s (index %d)", host.Name, host.Index)

	if err := session.Zones().Select(startupCtx, cfg.Zone); err != nil {
		log.Fatalf("Failed to select zone %s: %v", cfg.Zone, err)
	}
	zone, ok := session.Zones().Selected()
	if !ok {
		log.Fatalf("Unknown zone: %s", cfg.Zone)
	}
	log.Printf("Watching zone %s", zone)

	// Create and start collector
	c := collector.NewCollector(session)
	ticker := time.NewTicker(cfg.UpdateInterval())
	defer ticker.Stop()

	// Set up API routes
	router := api.NewRouter(session, c, cfg.APIKeys)

	// Start the API server in a goroutine
	go func() {
		log.Printf("Starting API server on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	log.Printf("Starting feed collector (update interval: %s)", cfg.UpdateInterval())

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			log.Printf("Error collecting data: %v", err)
		}
	}

	// Initial collection
	refresh()

	// Continuous collection
	for range ticker.C {
		refresh()
	}
}
