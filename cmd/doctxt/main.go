// Package main is the doctxt CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/doctxt/internal/cli"
	"github.com/hyperjump/doctxt/internal/config"
	"github.com/hyperjump/doctxt/internal/converter"
	"github.com/hyperjump/doctxt/internal/extract"
	"github.com/hyperjump/doctxt/internal/keyword"
	"github.com/hyperjump/doctxt/internal/models"
	"github.com/hyperjump/doctxt/internal/server"
	"github.com/hyperjump/doctxt/internal/storage"
	"github.com/hyperjump/doctxt/internal/watcher"
	"github.com/hyperjump/doctxt/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/doctxt/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory; if neither exists the built-in defaults are
// used, so doctxt works without any config file.
// Returns the config and the path that was actually loaded ("" for defaults).
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
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
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
	case "convert":
		runConvert()
	case "extract":
		runExtract()
	case "watch":
		runWatch()
	case "serve", "server":
		runServe()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("doctxt version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// convertFlags are shared by convert and watch.
type convertFlags struct {
	configPath  *string
	debug       *bool
	workers     *int
	extensions  *string
	incremental *bool
	noManifest  *bool
	noIndex     *bool
	quiet       *bool
}

func addConvertFlags(fs *flag.FlagSet) *convertFlags {
	return &convertFlags{
		configPath:  fs.String("config", defaultConfigPath, "config file path"),
		debug:       fs.Bool("debug", false, "enable debug logging"),
		workers:     fs.Int("workers", 0, "files converted concurrently (0 = from config)"),
		extensions:  fs.String("ext", "", "comma-separated subset of pdf,pptx,key,docx (empty = from config)"),
		incremental: fs.Bool("incremental", false, "skip sources unchanged since the last run"),
		noManifest:  fs.Bool("no-manifest", false, "do not record outcomes in the manifest database"),
		noIndex:     fs.Bool("no-index", false, "do not index outputs for search"),
		quiet:       fs.Bool("quiet", false, "suppress per-file progress"),
	}
}

// apply merges command-line overrides into cfg.
func (f *convertFlags) apply(cfg *config.Config) error {
	if *f.debug {
		cfg.Debug = true
	}
	if *f.workers > 0 {
		cfg.Convert.Workers = *f.workers
	}
	if exts := parseExtensions(*f.extensions); len(exts) > 0 {
		cfg.Convert.Extensions = exts
	}
	if *f.incremental {
		cfg.Convert.Incremental = true
	}
	return cfg.Validate()
}

// parseExtensions splits a comma-separated extension list; blanks are dropped.
func parseExtensions(s string) []string {
	var exts []string
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		exts = append(exts, "."+strings.TrimPrefix(strings.ToLower(e), "."))
	}
	return exts
}

// resolveRoots picks the input and output roots from positional args, falling back to
// the config and then to a txt_output directory next to the input root.
func resolveRoots(args []string, cfg *config.Config) (string, string, error) {
	in, out := cfg.Convert.InputRoot, cfg.Convert.OutputRoot
	if len(args) > 0 {
		in = args[0]
		out = ""
	}
	if len(args) > 1 {
		out = args[1]
	}
	if len(args) > 2 {
		return "", "", fmt.Errorf("too many arguments: %s", strings.Join(args[2:], " "))
	}
	if in == "" {
		return "", "", errors.New("no input root given (argument or convert.input_root)")
	}
	if out == "" {
		out = config.DefaultOutputRoot(in)
	}
	absIn, err := filepath.Abs(in)
	if err != nil {
		return "", "", err
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return "", "", err
	}
	return absIn, absOut, nil
}

func runConvert() {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cf := addConvertFlags(fs)
	outputFormat := fs.String("output", "text", "summary format: text, compact, or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: doctxt convert [flags] [input_root] [output_root]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*cf.configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cf.apply(cfg); err != nil {
		fmt.Printf("Failed to apply flags: %v\n", err)
		os.Exit(1)
	}
	inRoot, outRoot, err := resolveRoots(fs.Args(), cfg)
	if err != nil {
		fmt.Printf("Failed to resolve roots: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var progress io.Writer
	if !*cf.quiet {
		// Progress stays off stdout when the summary is meant for machines.
		progress = os.Stdout
		if format != cli.OutputText {
			progress = os.Stderr
		}
	}
	components := initializeOrDegrade(cfg, logger, cf)
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := components.newConverter(cfg, logger, progress)
	run, err := conv.ConvertTree(ctx, inRoot, outRoot)
	if run != nil {
		if werr := cli.WriteRunSummary(os.Stdout, run, format); werr != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	debug := fs.Bool("debug", false, "enable debug logging")
	outputFormat := fs.String("output", "text", "output format: text (extracted text only) or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: doctxt extract [flags] <file>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	res := extract.NewExtractor(extract.WithLogger(logger)).Extract(fs.Arg(0))
	if err := cli.WriteExtraction(os.Stdout, res, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	switch res.Status {
	case extract.StatusFailed:
		if format != cli.OutputJSON {
			fmt.Fprintf(os.Stderr, "Error with %s: %v\n", res.Path, res.Err)
		}
		os.Exit(1)
	case extract.StatusUnsupported:
		if format != cli.OutputJSON {
			fmt.Fprintf(os.Stderr, "Unsupported file type: %s\n", res.Path)
		}
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cf := addConvertFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: doctxt watch [flags] [input_root] [output_root]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*cf.configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cf.apply(cfg); err != nil {
		fmt.Printf("Failed to apply flags: %v\n", err)
		os.Exit(1)
	}
	inRoot, outRoot, err := resolveRoots(fs.Args(), cfg)
	if err != nil {
		fmt.Printf("Failed to resolve roots: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	logger, err := utils.NewServiceLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolvedConfigPath), zap.Bool("debug", cfg.Debug))

	var progress io.Writer
	if !*cf.quiet {
		progress = os.Stdout
	}
	components := initializeOrDegrade(cfg, logger, cf)
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := components.newConverter(cfg, logger, progress)
	run, err := conv.ConvertTree(ctx, inRoot, outRoot)
	if err != nil {
		logger.Fatal("Initial conversion failed", zap.Error(err))
	}
	_ = cli.WriteRunSummary(os.Stdout, run, cli.OutputText)

	exts := cfg.Convert.Extensions
	if len(exts) == 0 {
		exts = extract.SupportedExtensions()
	}
	watchOpts := []watcher.Option{
		watcher.WithDebounce(cfg.Watch.Debounce()),
		watcher.WithExclude(outRoot),
	}
	if cfg.Debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		inRoot,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := conv.ConvertFile(ctx, inRoot, outRoot, path); err != nil {
				logger.Warn("watch convert file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := conv.RemoveFile(ctx, inRoot, outRoot, path); err != nil {
				logger.Warn("watch remove file failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	if err := watchSvc.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	logger.Info("Watching for changes", zap.String("input_root", inRoot), zap.String("output_root", outRoot))
	<-ctx.Done()
	logger.Info("Shutting down...")
	watchSvc.Stop()
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	host := fs.String("host", "", "listen host (empty = from config)")
	port := fs.Int("port", 0, "listen port (0 = from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewServiceLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolvedConfigPath), zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, true, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		extract.NewExtractor(extract.WithLogger(logger)),
		components.Manifest,
		components.KeywordIndex,
		cfg,
		logger,
	)
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

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: doctxt search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Searches the text extracted by convert and watch. File names count more than body text.
  • Use --fuzzy to tolerate typos; a search with no hits is retried fuzzy automatically.
  • Use --server http://localhost:8080 while "doctxt serve" holds the index open.

Examples:
  doctxt search quarterly revenue
  doctxt search --fuzzy quartely
  doctxt search --output json "board minutes"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// positional arguments to the front of the slice so that flag.Parse() sees them.
// Go's flag package stops at the first non-flag argument, so
// "doctxt search \"query\" -limit 5" would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
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

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the index directly)")
	limit := fs.Int("limit", 0, "number of results (0 = from config)")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	highlight := fs.Bool("highlight", true, "show matching fragments")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	n := *limit
	if n <= 0 {
		n = cfg.Search.DefaultLimit
	}
	opts := &keyword.SearchOptions{TitleBoost: cfg.Search.TitleBoost, FuzzyEnabled: *fuzzy, Highlight: *highlight}

	var search func(opts *keyword.SearchOptions) (*models.SearchResponse, error)
	if *serverURL != "" {
		search = func(opts *keyword.SearchOptions) (*models.SearchResponse, error) {
			return searchViaHTTP(*serverURL, queryStr, n, opts)
		}
	} else {
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		search = func(opts *keyword.SearchOptions) (*models.SearchResponse, error) {
			return components.KeywordIndex.Search(context.Background(), queryStr, n, opts)
		}
	}

	response, err := search(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	// Auto-retry with fuzzy if no results and fuzzy not already enabled
	if !opts.FuzzyEnabled && response.Total == 0 {
		fuzzyOpts := *opts
		fuzzyOpts.FuzzyEnabled = true
		if fuzzyResponse, fuzzyErr := search(&fuzzyOpts); fuzzyErr == nil && fuzzyResponse.Total > 0 {
			response = fuzzyResponse
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, limit int, opts *keyword.SearchOptions) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fuzzy", strconv.FormatBool(opts.FuzzyEnabled))
	params.Set("highlight", strconv.FormatBool(opts.Highlight))
	var response models.SearchResponse
	if err := getJSON(strings.TrimSuffix(serverURL, "/")+"/api/v1/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func getJSON(target string, v interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the manifest directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var report *models.StatusReport
	if *serverURL != "" {
		report = &models.StatusReport{}
		if err := getJSON(strings.TrimSuffix(*serverURL, "/")+"/api/v1/status", report); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, true, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		report, err = server.BuildStatus(context.Background(), components.Manifest, components.KeywordIndex, cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteStatus(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds initialized services. Manifest and KeywordIndex are nil when disabled.
type Components struct {
	Manifest     storage.Manifest
	KeywordIndex keyword.KeywordIndex
}

func (c *Components) Close() {
	if c.Manifest != nil {
		_ = c.Manifest.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, withManifest, withIndex bool) (*Components, error) {
	c := &Components{}
	if withManifest {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize manifest: %w", err)
		}
		c.Manifest = store
	}
	if withIndex {
		idx, err := keyword.NewBleveIndex(cfg.Storage.IndexPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize output index: %w", err)
		}
		c.KeywordIndex = idx
	}
	logger.Debug("components initialized",
		zap.Bool("manifest", withManifest), zap.String("database_path", cfg.Storage.DatabasePath),
		zap.Bool("index", withIndex), zap.String("index_path", cfg.Storage.IndexPath))
	return c, nil
}

// initializeOrDegrade opens the manifest and index requested by cf. Conversion does not
// need either, so when they cannot be opened it warns and converts without them.
func initializeOrDegrade(cfg *config.Config, logger *zap.Logger, cf *convertFlags) *Components {
	components, err := initializeComponents(cfg, logger, !*cf.noManifest, !*cf.noIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; converting without manifest and index\n", err)
		logger.Warn("manifest and index disabled", zap.Error(err))
		return &Components{}
	}
	return components
}

func (c *Components) newConverter(cfg *config.Config, logger *zap.Logger, progress io.Writer) *converter.Converter {
	opts := []converter.Option{
		converter.WithLogger(logger),
		converter.WithWorkers(cfg.Convert.Workers),
		converter.WithExtensions(cfg.Convert.Extensions),
		converter.WithIncremental(cfg.Convert.Incremental),
	}
	if c.Manifest != nil {
		opts = append(opts, converter.WithManifest(c.Manifest))
	}
	if c.KeywordIndex != nil {
		opts = append(opts, converter.WithIndex(c.KeywordIndex))
	}
	if progress != nil {
		opts = append(opts, converter.WithProgress(progress))
	}
	return converter.New(extract.NewExtractor(extract.WithLogger(logger)), opts...)
}

func printUsage() {
	fmt.Println(`doctxt - Bulk PDF, PowerPoint, Keynote and Word to text converter

Usage:
  doctxt convert [flags] [input_root] [output_root]  Convert a document tree to a .txt tree
  doctxt extract [flags] <file>                      Print the text of one document
  doctxt watch [flags] [input_root] [output_root]    Convert, then follow changes
  doctxt serve [flags]                               Start the HTTP API
  doctxt search [flags] <query>                      Search converted text
  doctxt status [flags]                              Show manifest/index status
  doctxt version                                     Show version
  doctxt help                                        Show this help

Convert/Watch Flags:
  --config string    Config file path (default: /usr/local/etc/doctxt/config.yaml)
  --workers int      Files converted concurrently (default from config, 1)
  --ext string       Comma-separated subset of pdf,pptx,key,docx
  --incremental      Skip sources unchanged since the last run
  --no-manifest      Do not record outcomes in the manifest database
  --no-index         Do not index outputs for search
  --quiet            Suppress per-file progress
  --output string    Summary format for convert: text, compact or json (default: text)
  --debug            Enable debug logging

The output root defaults to a txt_output directory next to the input root.

Search Flags:
  --server string    Server URL; empty opens the index directly (default: "")
  --limit int        Number of results (default from config, 10)
  --fuzzy            Enable fuzzy matching for typo tolerance
  --output string    Output format: text, compact or json (default: text)

Status Flags:
  --server string    Server URL; empty opens the manifest directly (default: "")
  --output string    Output format: text or json (default: text)

Examples:
  doctxt convert ~/Documents/docs_not_txt
  doctxt convert --workers 4 --ext pdf,docx ./in ./out
  doctxt extract slides.key
  doctxt watch ./in ./out
  doctxt serve --port 9000
  doctxt search "quarterly revenue"
  doctxt status --output json`)
}
