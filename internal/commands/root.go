package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/cache"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/logger"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/report"
	"github.com/balkashynov/punch/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile string
	userID     uint
	scope      string
)

const cacheNamespace = "punch:cache:"

var rootCmd = &cobra.Command{
	Use:   "punch",
	Short: "Clock in, clock out and see where the hours went",
	Long: `punch tracks working time: one open tracker per person, clocked in and out
from the terminal or over HTTP, with daily, weekly and monthly reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is everything a command needs, built from the loaded config
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *db.Store
	redis    *redis.Client
	memory   *cache.Memory
	hub      *notify.Hub
	trackers *tracker.Service
	reports  *report.Service
	owner    tracker.Owner
}

// initApp loads config and opens the database. With serve set the events
// also go to the in-process hub that feeds SSE clients.
func initApp(serve bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if !serve && cfg.Log.File == "" && cfg.Log.Level != "debug" {
		// keep terminal output clean
		cfg.Log.Level = "error"
	}
	log := logger.Init(cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := db.Open(db.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Logger: log,
		Debug:  cfg.Log.Level == "debug",
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log, store: store}
	a.owner = tracker.Owner{UserID: userID, Scope: scope}
	if a.owner.Scope == "" {
		a.owner.Scope = cfg.Tracker.Scope
	}

	var publisher notify.Publisher = notify.Discard
	if serve {
		a.hub = notify.NewHub(32, log)
		publisher = a.hub
	}
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(context.Background()).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		// the bridge relays redis events into the hub when serving
		publisher = notify.NewRedisPublisher(a.redis, notify.DefaultChannelPrefix)
	}

	reportCache := a.reportCache(serve)

	trackerOpts := []tracker.Option{
		tracker.WithLocation(loc),
		tracker.WithPublisher(publisher),
		tracker.WithLogger(log),
	}
	reportOpts := []report.Option{report.WithLocation(loc), report.WithLogger(log)}
	if reportCache != nil {
		trackerOpts = append(trackerOpts, tracker.WithCache(reportCache))
		reportOpts = append(reportOpts, report.WithCache(reportCache, cfg.Redis.CacheTTL))
	}
	a.trackers = tracker.NewService(store, trackerOpts...)
	a.reports = report.NewService(store, reportOpts...)
	return a, nil
}

// reportCache returns a cache every writer of the database invalidates.
// Redis is shared by the CLI and all servers. The in-process cache is only
// kept when serve is explicitly told nothing else writes.
func (a *app) reportCache(serve bool) cache.Cache {
	switch {
	case a.redis != nil:
		return cache.NewRedis(a.redis, cacheNamespace)
	case serve && a.cfg.Server.ReportCache == config.ReportCacheMemory:
		a.logger.Warn("caching reports in process; trackers written outside this server show up after the cache ttl",
			"ttl", a.cfg.Redis.CacheTTL.String())
		a.memory = cache.NewMemory()
		return a.memory
	}
	return nil
}

func (a *app) close() {
	if a.memory != nil {
		a.memory.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// withApp wraps a command function to initialize the app first
func withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if userID == 0 {
			return fmt.Errorf("--user must be a positive id")
		}
		a, err := initApp(false)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(a, cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./punch.yaml or ~/.punch/config.yaml)")
	rootCmd.PersistentFlags().UintVarP(&userID, "user", "u", 1, "user id to act as")
	rootCmd.PersistentFlags().StringVar(&scope, "scope", "", "tenant scope (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(helpCmd)
}
