package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/ZaguanLabs/transcache/cache"
)

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file")
	cacheFile := fs.String("cache-file", "", "Report on a cache file written by translate instead of Redis")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log, flush, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer flush()

	var backend cache.Backend
	if *cacheFile != "" {
		mem := cache.NewMemoryBackend()
		if _, err := cache.NewImporter(mem).ImportFromFile(*cacheFile); err != nil {
			return fmt.Errorf("loading cache: %w", err)
		}
		backend = mem
	} else if backend, err = newBackend(cfg.Redis); err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap := cache.NewStore(backend, cache.WithLogger(log)).Stats(ctx)

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Fprintf(stdout, "Cache hits:     %d\n", snap.Hits)
	fmt.Fprintf(stdout, "Cache misses:   %d\n", snap.Misses)
	fmt.Fprintf(stdout, "Hit rate:       %s\n", snap.HitRateText)
	fmt.Fprintf(stdout, "Total requests: %d\n", snap.TotalRequests)
	fmt.Fprintf(stdout, "Memory used:    %s\n", snap.MemoryUsed)
	fmt.Fprintf(stdout, "Total keys:     %d\n", snap.TotalKeys)
	return nil
}
