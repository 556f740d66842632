// Package main is the Konomi CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/konomi/internal/classify"
	"github.com/hyperjump/konomi/internal/cli"
	"github.com/hyperjump/konomi/internal/config"
	"github.com/hyperjump/konomi/internal/interest"
	"github.com/hyperjump/konomi/internal/server"
	"github.com/hyperjump/konomi/internal/store"
	"github.com/hyperjump/konomi/internal/telemetry"
	"github.com/hyperjump/konomi/internal/watcher"
	"github.com/hyperjump/konomi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/konomi/config.yaml"
	defaultServerURL  = "http://localhost:8090"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "konomi server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "vector":
		runVector()
	case "metrics":
		runMetrics()
	case "references":
		runReferences()
	case "status":
		runStatus()
	case "interrupt":
		runInterrupt()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("konomi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (skipped URLs, table reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Classifier.WatchOrDefault() {
		classifier := components.Classifier
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		tableWatch := watcher.New(cfg.Classifier.TablePath, func(path string) {
			if err := classifier.Reload(path); err != nil {
				logger.Warn("table reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("classification table reloaded",
				zap.String("path", path),
				zap.Int("entries", classifier.TableSize()))
		}, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := tableWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start table watch", zap.Error(err))
		}
		defer tableWatch.Stop()
	}

	srv := server.NewServer(components.Store, cfg, logger, components.Metrics)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printIngestUsage prints ingest subcommand usage.
func printIngestUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: konomi ingest [flags] <url>...\n\n")
	fmt.Fprintf(fs.Output(), "URLs are taken from the arguments and, with --file, one per line from a file.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  konomi ingest https://espn.com/nba/story https://allrecipes.com/recipe/42
  konomi ingest --file history.txt
  konomi ingest --server "" https://espn.com/nba   # direct storage, no server
`)
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// `konomi ingest https://example.com -server ""` would otherwise leave
// -server unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// readURLLines reads one URL per line, skipping blank lines and lines
// starting with #.
func readURLLines(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// parseOutputFormat maps the --output flag value to a cli format. The second
// return is false for unknown values.
func parseOutputFormat(s string) (cli.OutputFormat, bool) {
	switch s {
	case "json":
		return cli.OutputJSON, true
	case "text":
		return cli.OutputText, true
	default:
		return cli.OutputText, false
	}
}

func runIngest() {
	ingestArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage when server is not running)")
	urlFile := fs.String("file", "", "read URLs from a file, one per line (# comments skipped)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printIngestUsage(fs) }
	_ = fs.Parse(ingestArgs)

	urls := append([]string(nil), fs.Args()...)
	if *urlFile != "" {
		f, err := os.Open(*urlFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open URL file: %v\n", err)
			os.Exit(1)
		}
		fileURLs, err := readURLLines(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read URL file: %v\n", err)
			os.Exit(1)
		}
		urls = append(urls, fileURLs...)
	}
	if len(urls) == 0 {
		printIngestUsage(fs)
		os.Exit(1)
	}

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var vec interest.Vector
	if *serverURL != "" {
		// Use the HTTP API when the server is running so there is a single
		// writer on the database.
		v, err := ingestViaHTTP(*serverURL, urls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		vec = v
	} else {
		components, cleanup, err := directComponents(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		v, err := components.Store.Ingest(context.Background(), urls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		vec = v
	}

	if format == cli.OutputJSON {
		if err := cli.WriteVector(os.Stdout, vec, cli.OutputJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("Ingested %d URL(s); profile total %d\n", len(urls), vec.Total())
}

func ingestViaHTTP(serverURL string, urls []string) (interest.Vector, error) {
	body, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return interest.Vector{}, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return interest.Vector{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return interest.Vector{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Vector interest.Vector `json:"vector"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return interest.Vector{}, fmt.Errorf("decode response: %w", err)
	}
	return out.Vector, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func getJSON(rawURL string, out interface{}) error {
	resp, err := http.Get(rawURL)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runVector() {
	fs := flag.NewFlagSet("vector", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var vec interest.Vector
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/vector", &vec); err != nil {
			fmt.Fprintf(os.Stderr, "Vector failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cleanup, err := directComponents(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		v, err := components.Store.UserInterestVector(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Vector failed: %v\n", err)
			os.Exit(1)
		}
		vec = v
	}
	if err := cli.WriteVector(os.Stdout, vec, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runMetrics() {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var metrics interest.Metrics
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/metrics", &metrics); err != nil {
			fmt.Fprintf(os.Stderr, "Metrics failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cleanup, err := directComponents(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		m, err := components.Store.CalculateMetrics(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Metrics failed: %v\n", err)
			os.Exit(1)
		}
		metrics = m
	}
	if err := cli.WriteMetrics(os.Stdout, metrics, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runReferences() {
	fs := flag.NewFlagSet("references", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var scores []store.ReferenceScore
	if *serverURL != "" {
		var out struct {
			References []store.ReferenceScore `json:"references"`
		}
		if err := getJSON(*serverURL+"/api/v1/references", &out); err != nil {
			fmt.Fprintf(os.Stderr, "References failed: %v\n", err)
			os.Exit(1)
		}
		scores = out.References
	} else {
		components, cleanup, err := directComponents(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		s, err := components.Store.CompareReferences(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "References failed: %v\n", err)
			os.Exit(1)
		}
		scores = s
	}
	if err := cli.WriteReferences(os.Stdout, scores, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var stats store.Stats
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/status", &stats); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cleanup, err := directComponents(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		s, err := components.Store.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		stats = s
	}
	if err := cli.WriteStatus(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runInterrupt() {
	fs := flag.NewFlagSet("interrupt", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Post(*serverURL+"/api/v1/interrupt", "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Interrupt failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Println("Interrupted in-flight operations")
}

// starterTable seeds a fresh install with a few well-known hosts so ingest
// produces signal before the host application ships its own table.
const starterTable = `{
  "version": 1,
  "domains": {
    "espn.com": "sports",
    "cnn.com": "news",
    "github.com": "tech",
    "allrecipes.com": "food",
    "zillow.com": "real_estate",
    "booking.com": "travel"
  }
}
`

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if _, statErr := os.Stat(*configPath); statErr == nil {
		fmt.Printf("Config already exists: %s\n", *configPath)
	} else {
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)
		if err := os.MkdirAll(filepath.Dir(*configPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create config directory: %v\n", err)
			os.Exit(1)
		}
		if err := config.Save(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote config: %s\n", *configPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	tablePath := cfg.Classifier.TablePath
	if _, statErr := os.Stat(tablePath); statErr == nil {
		fmt.Printf("Classification table already exists: %s\n", tablePath)
		return
	}
	if err := os.MkdirAll(filepath.Dir(tablePath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create table directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(tablePath, []byte(starterTable), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote starter classification table: %s\n", tablePath)
}

// Components holds initialized services.
type Components struct {
	Classifier *classify.Classifier
	Store      *store.Store
	Metrics    *telemetry.Metrics
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	table, err := classify.LoadTable(cfg.Classifier.TablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification table: %w", err)
	}
	classifierOpts := []classify.ClassifierOption{}
	if debug && logger != nil {
		classifierOpts = append(classifierOpts, classify.WithLogger(logger))
	}
	classifier := classify.NewClassifier(table, classifierOpts...)

	references, err := cfg.ReferenceVectors()
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference vectors: %w", err)
	}

	metrics := telemetry.New()
	storeOpts := []store.Option{
		store.WithMetrics(metrics),
		store.WithReferences(references),
		store.WithParallelism(cfg.Ingest.Parallelism),
	}
	if debug && logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(logger))
	}
	st, err := store.New(cfg.Storage.DatabasePath, classifier, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &Components{
		Classifier: classifier,
		Store:      st,
		Metrics:    metrics,
	}, nil
}

// directComponents boots components for a one-shot command that accesses
// storage without a running server.
func directComponents(configPath string) (*Components, func(), error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		components.Close()
		_ = logger.Sync()
	}
	return components, cleanup, nil
}

func printUsage() {
	fmt.Println(`konomi - On-device browsing interest profiler

Usage:
  konomi server [flags]            Start the local HTTP server
  konomi ingest [flags] <url>...   Classify URLs and fold them into the profile
  konomi vector [flags]            Show the persisted interest vector
  konomi metrics [flags]           Show top-N interest similarity metrics
  konomi references [flags]        Score the profile against configured references
  konomi status [flags]            Show store state and sizes
  konomi interrupt [flags]         Cancel in-flight operations on the server
  konomi init [flags]              Write a starting config and classification table
  konomi version                   Show version
  konomi help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/konomi/config.yaml)
  --debug            Enable debug logging (skipped URLs, table reloads, etc.)

Ingest Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8090). Use empty (--server "") for direct storage.
  --file string      Read URLs from a file, one per line (# comments skipped)
  --output string    Output format: text or json (default: text)

Vector / Metrics / References / Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8090). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Interrupt Flags:
  --server string    Server URL (default: http://localhost:8090)

Examples:
  konomi init
  konomi server
  konomi ingest https://espn.com/nba/story https://allrecipes.com/recipe/42
  konomi ingest --file history.txt
  konomi vector
  konomi metrics --output json
  konomi references
  konomi status --output json`)
}
