package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshdurbin/shortlinks/internal/cache"
	cachememory "github.com/joshdurbin/shortlinks/internal/cache/memory"
	cacheredis "github.com/joshdurbin/shortlinks/internal/cache/redis"
	"github.com/joshdurbin/shortlinks/internal/clock"
	"github.com/joshdurbin/shortlinks/internal/config"
	"github.com/joshdurbin/shortlinks/internal/metrics"
	"github.com/joshdurbin/shortlinks/internal/ratelimit"
	"github.com/joshdurbin/shortlinks/internal/repository"
	repomemory "github.com/joshdurbin/shortlinks/internal/repository/memory"
	"github.com/joshdurbin/shortlinks/internal/repository/postgres"
	"github.com/joshdurbin/shortlinks/internal/repository/sqlite"
	"github.com/joshdurbin/shortlinks/internal/service"
	"github.com/joshdurbin/shortlinks/internal/shortener"
	"github.com/joshdurbin/shortlinks/internal/transport/client"
	httpTransport "github.com/joshdurbin/shortlinks/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "shortlinks",
	Short: "A URL shortening service written in Go",
	Long:  "A URL shortening service with pluggable storage (SQLite, PostgreSQL), configurable caching (memory or Redis), per-IP rate limiting, and click analytics",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the URL shortening server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var getCmd = &cobra.Command{
	Use:   "get [SHORT_CODE]",
	Short: "Get information about a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [SHORT_CODE]",
	Short: "Delete a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats [SHORT_CODE]",
	Short: "Show click statistics for a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var activateCmd = &cobra.Command{
	Use:   "activate [SHORT_CODE]",
	Short: "Activate a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  makeStatusRunner(true),
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate [SHORT_CODE]",
	Short: "Deactivate a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  makeStatusRunner(false),
}

func init() {
	// Server command flags
	serverCmd.Flags().StringP("port", "p", "8080", "Server port")
	serverCmd.Flags().String("base-url", "http://localhost:8080", "Public base URL used to compose short URLs")
	serverCmd.Flags().String("db-driver", config.DriverSQLite, "Database driver (sqlite, postgres, memory)")
	serverCmd.Flags().String("db-path", "shortlinks.db", "SQLite database file path")
	serverCmd.Flags().String("db-dsn", "", "PostgreSQL connection string")
	serverCmd.Flags().String("cache", config.CacheMemory, "Cache backend (memory, redis)")
	serverCmd.Flags().String("redis-addr", "", "Redis address (host:port)")
	serverCmd.Flags().Int("rate-limit", ratelimit.DefaultCreateLimit, "Create requests allowed per IP per minute")

	// Shortener configuration flags
	serverCmd.Flags().Int("code-length", 6, "Length of generated short codes")
	serverCmd.Flags().Int("max-attempts", 5, "Generation attempts before giving up")

	// Logging configuration flags
	serverCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:8080", "Server URL")
	createCmd.Flags().String("alias", "", "Custom alias (4-20 chars of [A-Za-z0-9_-])")
	createCmd.Flags().String("expires-at", "", "Expiry timestamp (RFC 3339)")
	statsCmd.Flags().String("from", "", "Window start (RFC 3339)")
	statsCmd.Flags().String("to", "", "Window end (RFC 3339)")

	// Add subcommands
	clientCmd.AddCommand(createCmd, getCmd, deleteCmd, statsCmd, activateCmd, deactivateCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Local development reads defaults from .env; absence is fine.
	_ = godotenv.Load()

	port, _ := cmd.Flags().GetString("port")
	baseURL, _ := cmd.Flags().GetString("base-url")
	dbDriver, _ := cmd.Flags().GetString("db-driver")
	dbPath, _ := cmd.Flags().GetString("db-path")
	dbDSN, _ := cmd.Flags().GetString("db-dsn")
	cacheBackend, _ := cmd.Flags().GetString("cache")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	codeLength, _ := cmd.Flags().GetInt("code-length")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if dbDSN == "" {
		dbDSN = os.Getenv("DATABASE_URL")
	}
	if redisAddr == "" {
		redisAddr = os.Getenv("REDIS_ADDR")
	}

	cfg, err := config.New(
		config.ServerConfig{Port: port, BaseURL: baseURL},
		config.DatabaseConfig{Driver: dbDriver, Path: dbPath, DSN: dbDSN},
		config.CacheConfig{Backend: cacheBackend, RedisAddr: redisAddr},
		config.RateLimitConfig{CreatePerMinute: rateLimit},
		config.LoggingConfig{Verbose: verbose},
		shortener.Config{CodeLength: codeLength, MaxAttempts: maxAttempts},
	)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	metrics.Init()
	clk := clock.System()

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	repo, err := newRepository(startCtx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	logger.Info("repository ready", zap.String("driver", cfg.Database.Driver))

	linkCache, err := newCache(cfg, clk)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	logger.Info("cache ready", zap.String("backend", cfg.Cache.Backend))

	generator := shortener.NewRandomGenerator()
	limiter := ratelimit.New(clk, cfg.RateLimit.CreatePerMinute)

	links := service.New(repo, linkCache, generator, cfg.Shortener, clk, logger)
	defer func() {
		if err := links.Close(); err != nil {
			logger.Error("error closing service", zap.Error(err))
		}
	}()

	server := httpTransport.NewServer(links, limiter, cfg.Server.Port, cfg.Server.BaseURL, logger)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRepository(ctx context.Context, cfg *config.Config) (repository.LinkRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Database.Path)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.Database.DSN)
	case config.DriverMemory:
		return repomemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}

func newCache(cfg *config.Config, clk clock.Clock) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cachememory.New(clk), nil
	case config.CacheRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Cache.RedisAddr})
		return cacheredis.New(rdb), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Cache.Backend)
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	commands, err := newCommands(cmd)
	if err != nil {
		return err
	}

	alias, _ := cmd.Flags().GetString("alias")
	expiresRaw, _ := cmd.Flags().GetString("expires-at")

	var expiresAt *time.Time
	if expiresRaw != "" {
		t, err := time.Parse(time.RFC3339, expiresRaw)
		if err != nil {
			return fmt.Errorf("invalid --expires-at: %w", err)
		}
		utc := t.UTC()
		expiresAt = &utc
	}

	ctx, cancel := clientContext()
	defer cancel()

	return commands.Create(ctx, args[0], alias, expiresAt)
}

func runGet(cmd *cobra.Command, args []string) error {
	commands, err := newCommands(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := clientContext()
	defer cancel()

	return commands.Get(ctx, args[0])
}

func runDelete(cmd *cobra.Command, args []string) error {
	commands, err := newCommands(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := clientContext()
	defer cancel()

	return commands.Delete(ctx, args[0])
}

func runStats(cmd *cobra.Command, args []string) error {
	commands, err := newCommands(cmd)
	if err != nil {
		return err
	}

	from, err := flagTime(cmd, "from")
	if err != nil {
		return err
	}
	to, err := flagTime(cmd, "to")
	if err != nil {
		return err
	}

	ctx, cancel := clientContext()
	defer cancel()

	return commands.Stats(ctx, args[0], from, to)
}

func makeStatusRunner(isActive bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		commands, err := newCommands(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := clientContext()
		defer cancel()

		return commands.SetStatus(ctx, args[0], isActive)
	}
}

func newCommands(cmd *cobra.Command) (*client.Commands, error) {
	serverURL, err := cmd.Flags().GetString("server-url")
	if err != nil {
		return nil, err
	}
	return client.NewCommands(client.NewClient(serverURL)), nil
}

func clientContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func flagTime(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	utc := t.UTC()
	return &utc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
