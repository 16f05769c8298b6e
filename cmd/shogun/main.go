package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hpungsan/shogun/internal/cache"
	"github.com/hpungsan/shogun/internal/config"
	"github.com/hpungsan/shogun/internal/db"
	"github.com/hpungsan/shogun/internal/logging"
	"github.com/hpungsan/shogun/internal/mcp"
	"github.com/hpungsan/shogun/internal/metrics"
	"github.com/hpungsan/shogun/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "show": true, "css": true,
	"render": true, "preview": true, "play": true,
	"export": true, "cache": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _
  / __| |_  ___  __ _ _  _ _ _
  \__ \ ' \/ _ \/ _` + "`" + ` | || | ' \
  |___/_||_\___/\__, |\_,_|_||_|
                |___/

  Animated slogans, typewriters and neon text

  Usage: shogun <command> [options]
         shogun --help

  MCP server mode requires piped input.`)
}

// runtime is everything a command needs beyond its flags.
type runtime struct {
	env      *ops.Env
	registry *prometheus.Registry
	logger   log.Logger
	close    func()
}

// openRuntime loads config from baseDir and the enclosing repo, opens the
// cache backend and wires metrics and logging.
func openRuntime(baseDir string) (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.DebugMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var (
		store    cache.Store
		database *sql.DB
	)
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		store = cache.NewMemoryStore(time.Now)
	default:
		database, err = db.Init(baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db.ConfigurePool(database, cfg)
		store = cache.NewSQLStore(database, time.Now)
	}

	env, err := ops.NewEnv(cfg, store, m, logger)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("failed to load animations: %w", err)
	}
	env.ExportsDir = filepath.Join(baseDir, "exports")
	level.Debug(logger).Log("msg", "runtime ready", "cache_backend", cfg.CacheBackend, "animations", env.Registry.Len())

	return &runtime{
		env:      env,
		registry: reg,
		logger:   logger,
		close: func() {
			if database != nil {
				database.Close()
			}
		},
	}, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening the cache (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'shogun --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	rt, err := openRuntime(filepath.Join(homeDir, ".shogun"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close()

	if isCLIMode() {
		app := newCLIApp(rt)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			rt.close()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(rt.env, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		rt.close()
		os.Exit(1)
	}
}
