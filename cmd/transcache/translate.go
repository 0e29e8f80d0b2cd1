package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/cache"
)

// TranslateOutput is the --json output of the translate command.
type TranslateOutput struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Provider       string `json:"provider"`
	Cached         bool   `json:"cached"`
	RequestCount   int64  `json:"request_count,omitempty"`
	ElapsedMs      int64  `json:"elapsed_ms"`
}

func runTranslate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file")
	text := fs.String("text", "", "Text to translate (default: remaining args, or stdin)")
	sourceLang := fs.String("source", transcache.DefaultSourceLang, "Source language code")
	targetLang := fs.String("target", transcache.DefaultTargetLang, "Target language code")
	providerName := fs.String("provider", transcache.DefaultProvider, "Provider: mymemory, deepl, helsinki, openai")
	retries := fs.Int("retries", -1, "Retry transient provider failures this many times (default: providers.retries)")
	cacheFile := fs.String("cache-file", "", "Persist the in-memory cache to this JSON file between runs")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := readInput(*text, fs.Args())
	if err != nil {
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

	// A cache file implies the local memory backend.
	var backend cache.Backend
	if *cacheFile != "" {
		backend = cache.NewMemoryBackend()
	} else if backend, err = newBackend(cfg.Redis); err != nil {
		return err
	}
	defer backend.Close()

	mem, _ := backend.(*cache.MemoryBackend)
	if mem != nil && *cacheFile != "" {
		if err := loadCacheFile(mem, *cacheFile, stderr, *quiet); err != nil {
			return err
		}
	}

	if *retries >= 0 {
		cfg.Providers.Retries = *retries
	}

	store := cache.NewStore(backend, cache.WithLogger(log))
	svc := transcache.NewService(newRouter(cfg.Providers, log),
		transcache.WithCache(store),
		transcache.WithServiceLogger(log),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := transcache.Request{
		Text:       input,
		SourceLang: *sourceLang,
		TargetLang: *targetLang,
		Provider:   *providerName,
	}

	start := time.Now()
	result, err := svc.Translate(ctx, req)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if mem != nil && *cacheFile != "" {
		meta := map[string]string{"written_by": transcache.UserAgent()}
		if err := cache.NewExporter(mem).ExportToFile(*cacheFile, meta); err != nil {
			return fmt.Errorf("saving cache: %w", err)
		}
	}

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(TranslateOutput{
			OriginalText:   result.OriginalText,
			TranslatedText: result.TranslatedText,
			SourceLang:     result.SourceLang,
			TargetLang:     result.TargetLang,
			Provider:       result.Provider,
			Cached:         result.Cached,
			RequestCount:   result.RequestCount,
			ElapsedMs:      elapsed.Milliseconds(),
		})
	}

	fmt.Fprintln(stdout, result.TranslatedText)

	if !*quiet {
		source := "provider " + result.Provider
		if result.Cached {
			source = "cache"
		}
		fmt.Fprintf(stderr, "%s -> %s from %s in %v\n",
			result.SourceLang, result.TargetLang, source, elapsed.Round(time.Millisecond))
	}

	return nil
}

// readInput takes --text, then positional args, then stdin.
func readInput(text string, args []string) (string, error) {
	if text != "" {
		return text, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	input := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(input) == "" {
		return "", errors.New("no text to translate (use --text, arguments, or stdin)")
	}
	return input, nil
}

func loadCacheFile(mem *cache.MemoryBackend, path string, stderr io.Writer, quiet bool) error {
	res, err := cache.NewImporter(mem).ImportFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading cache: %w", err)
	}
	if !quiet && res.Expired > 0 {
		fmt.Fprintf(stderr, "cache: %d entries restored, %d expired\n", res.Imported, res.Expired)
	}
	return nil
}
