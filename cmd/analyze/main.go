package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"hwdash/internal/config"
	"hwdash/internal/detector"
	"hwdash/internal/insights"
	"hwdash/internal/logstore"
	"hwdash/internal/processor"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file")
	startStr := flag.String("start", "", "start date (YYYY-MM-DD, default 7 days ago)")
	endStr := flag.String("end", "", "end date (YYYY-MM-DD, default today)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	end := time.Now()
	if *endStr != "" {
		end, err = time.Parse(logstore.DateLayout, *endStr)
		if err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}
	}
	start := end.AddDate(0, 0, -7)
	if *startStr != "" {
		start, err = time.Parse(logstore.DateLayout, *startStr)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
	}

	store := logstore.New(cfg.Data)
	proc := processor.New(store)
	engine := insights.NewEngine(proc, detector.New(&cfg.Analysis), &cfg.Analysis)

	result, err := engine.AnalyzePeriod(start, end)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("=== Insights for %s to %s ===\n",
		start.Format(logstore.DateLayout), end.Format(logstore.DateLayout))
	if len(result) == 0 {
		fmt.Println("No insights generated (no data for the period?)")
	}
	for _, insight := range result {
		fmt.Printf("[%s] %s\n", insight.Level, insight.Title)
		fmt.Printf("  %s\n", insight.Description)
		if insight.AnomalyCount > 0 {
			fmt.Printf("  Anomalies: %d\n", insight.AnomalyCount)
		}
		for _, rec := range insight.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}

	summary, err := engine.GetHealthSummary(start, end)
	if err != nil {
		log.Fatalf("Health summary failed: %v", err)
	}
	fmt.Printf("\n=== Health Summary ===\n")
	fmt.Printf("Overall: %s | insights: %d | anomalies: %d | critical: %d | warnings: %d\n",
		summary.OverallHealth, summary.TotalInsights, summary.TotalAnomalies,
		summary.CriticalIssues, summary.Warnings)
}
