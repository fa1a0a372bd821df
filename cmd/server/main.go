package main

import (
	"flag"
	"log"

	"hwdash/internal/config"
	"hwdash/internal/detector"
	"hwdash/internal/insights"
	"hwdash/internal/logstore"
	"hwdash/internal/processor"
	"hwdash/internal/server"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store := logstore.New(cfg.Data)
	proc := processor.New(store)
	det := detector.New(&cfg.Analysis)
	engine := insights.NewEngine(proc, det, &cfg.Analysis)

	httpServer := server.NewServer(proc, engine, cfg.Server.AllowedOrigins)

	log.Printf("Starting server on %s (log directory: %s)", cfg.Server.Addr, cfg.Data.Directory)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
