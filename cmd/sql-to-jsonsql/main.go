package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/telebill-community/sql-to-jsonsql/cmd/sql-to-jsonsql/api"
	"github.com/telebill-community/sql-to-jsonsql/lib/billing"
	"github.com/telebill-community/sql-to-jsonsql/lib/jsonsql"
	"github.com/telebill-community/sql-to-jsonsql/lib/store"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/cachestore"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/schemastore"
)

func main() {
	configFile := flag.String("config", "", "configuration file (YAML)")
	sqlText := flag.String("sql", "", "transpile a single SQL statement and exit")
	replMode := flag.Bool("repl", false, "start an interactive prompt")
	syncSchema := flag.Bool("sync-schema", false, "fetch the schema from the billing engine and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := api.Config{
		ListenAddr:    ":8080",
		Dialect:       "postgres",
		AutoOrderByID: true,
	}
	if *configFile != "" {
		content, err := os.ReadFile(*configFile)
		if err != nil {
			logger.Fatal("failed to read config file", zap.String("path", *configFile), zap.Error(err))
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			logger.Fatal("failed to parse config file", zap.String("path", *configFile), zap.Error(err))
		}
	}

	switch {
	case *syncSchema:
		if err := runSyncSchema(cfg, logger); err != nil {
			logger.Fatal("schema sync failed", zap.Error(err))
		}
	case *sqlText != "":
		if err := runOneShot(cfg, *sqlText); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	case *replMode:
		if err := runREPL(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	default:
		runServer(cfg, logger)
	}
}

func runServer(cfg api.Config, logger *zap.Logger) {
	srv, err := api.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to configure server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// buildTools assembles the transpiler options, stores and API client shared
// by the non-server modes.
func buildTools(cfg api.Config) (*store.Provider, jsonsql.Options, *billing.API, error) {
	schemaStore, err := schemastore.New(cfg.Tables)
	if err != nil {
		return nil, jsonsql.Options{}, nil, fmt.Errorf("failed to create schema store: %w", err)
	}
	cacheStore, err := cachestore.New(cfg.CacheDir)
	if err != nil {
		return nil, jsonsql.Options{}, nil, fmt.Errorf("failed to create cache store: %w", err)
	}
	if len(cfg.Tables) == 0 {
		if cached, ok, err := cacheStore.Load(); err == nil && ok {
			if err := schemaStore.Replace(cached); err != nil {
				return nil, jsonsql.Options{}, nil, fmt.Errorf("failed to apply cached schema: %w", err)
			}
		}
	}

	opts := jsonsql.Options{
		Dialect:       jsonsql.Dialect(cfg.Dialect),
		AutoOrderByID: cfg.AutoOrderByID,
		Schema:        schemaStore,
	}
	apiClient := billing.NewBillingAPI(billing.EndpointConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
	})
	return store.NewStoreProvider(schemaStore, cacheStore), opts, apiClient, nil
}

func runSyncSchema(cfg api.Config, logger *zap.Logger) error {
	sp, _, apiClient, err := buildTools(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tables, err := apiClient.FetchSchema(ctx, billing.EndpointConfig{})
	if err != nil {
		return err
	}
	if sp.CacheStore() == nil {
		return fmt.Errorf("schema sync requires cacheDir to be configured")
	}
	path, err := sp.CacheStore().Save(tables)
	if err != nil {
		return err
	}
	logger.Info("schema synced", zap.Int("tables", len(tables)), zap.String("path", path))
	return nil
}

func runOneShot(cfg api.Config, sql string) error {
	_, opts, apiClient, err := buildTools(cfg)
	if err != nil {
		return err
	}

	si, err := jsonsql.TranspileSQL(sql, opts)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]any{
		"method": string(si.Type),
		"params": si.Doc,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if cfg.Endpoint == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	data, err := apiClient.Execute(ctx, si, billing.EndpointConfig{})
	if err != nil {
		return err
	}
	if len(data) > 0 {
		fmt.Println(string(data))
	}
	return nil
}
