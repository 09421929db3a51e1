package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/internal/backup"
	"github.com/HerbHall/adminlist/internal/config"
	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listcontroller"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/navstate"
	"github.com/HerbHall/adminlist/internal/server"
	"github.com/HerbHall/adminlist/internal/store"
	"github.com/HerbHall/adminlist/internal/version"
)

//	@title			AdminList API
//	@version		1.0
//	@description	Paginated, sorted and filtered record lists backed by a pluggable data provider.
//	@BasePath		/api/v1
func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	backupPath := flag.String("backup", "", "write a backup archive of the database and config to this path, then exit (\"auto\" picks a timestamped name)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	_, settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(settings.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("AdminList server starting", zap.String("version", version.Short()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.New(settings.Store.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if *backupPath != "" {
		out := *backupPath
		if out == "auto" {
			out = backup.DefaultName(time.Now())
		}
		if err := backup.ArchiveFile(ctx, db, *configPath, out); err != nil {
			logger.Fatal("backup failed", zap.Error(err))
		}
		logger.Info("backup written", zap.String("path", out))
		return
	}

	nav, closeNav, err := newNavState(ctx, settings.NavState, db)
	if err != nil {
		logger.Fatal("failed to open navigation state", zap.Error(err))
	}
	defer closeNav()

	provider, err := newProvider(ctx, settings.Provider, db)
	if err != nil {
		logger.Fatal("failed to create data provider", zap.Error(err))
	}
	provider = navstate.NewRecorder(provider, nav, logger.Named("navstate"))

	metrics := listcontroller.NewMetrics()
	srv := server.New(settings.Server.Addr(), server.Deps{
		Provider:    provider,
		Snapshot:    nav,
		ParamsStore: nav,
		Inbox:       listcontroller.NewInbox(settings.List.InboxSize),
		Selections:  listcontroller.NewSelections(),
		Metrics:     metrics,
		Defaults:    listDefaults(settings.List),
	}, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("AdminList server ready",
		zap.String("addr", settings.Server.Addr()),
		zap.String("provider", settings.Provider.Kind),
		zap.String("navstate", settings.NavState.Kind),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("AdminList server stopped")
}

func newLogger(s config.LogSettings) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if s.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(s.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = level
	return cfg.Build()
}

func newProvider(ctx context.Context, s config.ProviderSettings, db *store.SQLiteStore) (dataprovider.Provider, error) {
	var p dataprovider.Provider
	switch s.Kind {
	case "rest":
		p = dataprovider.NewRESTProvider(dataprovider.RESTConfig{
			BaseURL: s.BaseURL,
			Timeout: s.Timeout,
			Retries: s.Retries,
		})
	default:
		sp, err := dataprovider.NewSQLiteProvider(ctx, db)
		if err != nil {
			return nil, err
		}
		p = sp
	}

	if s.RateLimit > 0 {
		p = dataprovider.NewRateLimited(p, s.RateLimit, s.RateBurst)
	}
	if s.CacheSize > 0 {
		cached, err := dataprovider.NewCached(p, s.CacheSize, s.CacheTTL)
		if err != nil {
			return nil, err
		}
		p = cached
	}
	if s.LatestOnly {
		p = dataprovider.NewSequenced(p)
	}
	return p, nil
}

func newNavState(ctx context.Context, s config.NavStateSettings, db *store.SQLiteStore) (navstate.Store, func(), error) {
	switch s.Kind {
	case "memory":
		return navstate.NewMemory(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr, DB: s.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", s.RedisAddr, err)
		}
		return navstate.NewRedis(client, s.TTL), func() { _ = client.Close() }, nil
	default:
		nav, err := navstate.NewSQLite(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		return nav, func() {}, nil
	}
}

func listDefaults(s config.ListSettings) server.ListDefaults {
	policy := listparams.PerPageResetsPage
	if strings.EqualFold(s.PerPagePolicy, "keep") {
		policy = listparams.PerPageKeepsPage
	}
	return server.ListDefaults{
		PerPage:       s.PerPage,
		Sort:          listparams.Sort{Field: s.SortField, Order: listparams.Order(strings.ToUpper(s.SortOrder))},
		Debounce:      s.Debounce,
		PerPagePolicy: policy,
		FetchTimeout:  s.FetchTimeout,
	}
}
