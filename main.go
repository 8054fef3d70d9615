package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market_assistant/internal/config"
	"market_assistant/internal/core"
	"market_assistant/internal/services"
	"market_assistant/internal/storage"
	"market_assistant/src"
	"market_assistant/src/llm"
	"market_assistant/src/logger"
	"market_assistant/src/model"
	redisstore "market_assistant/src/storage"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	envFile     string
	seedFile    string
	offline     bool
	metricsAddr string

	cfg *src.Config
)

var rootCmd = &cobra.Command{
	Use:   "market-assistant",
	Short: "Conversational market guide for fresh produce prices",
	Long: `market-assistant answers questions about vegetable and fruit prices, stock and
demand. Replies are synthesized offline from the live catalog and, when a remote
LLM provider is configured, rephrased by the model with the conversation context.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", envFile, err)
		}

		loaded, err := src.LoadConfig()
		if err != nil {
			return err
		}
		if seedFile != "" {
			loaded.CatalogConfig.SeedFile = seedFile
		}
		if offline {
			loaded.LLMConfig.Provider = ""
		}

		if err := logger.InitLogger(loaded.LogConfig); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "catalog seed file (overrides CATALOG_SEED_FILE)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never call the remote LLM")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
}

// application bundles the components every command works with
type application struct {
	catalog   *services.CatalogService
	cache     *redisstore.CatalogCache
	sessions  *storage.SessionManager
	processor *core.Processor
}

func newApplication(ctx context.Context) (*application, error) {
	app := &application{}

	var sources []services.CatalogSource
	if cfg.CatalogConfig.RedisURL != "" {
		client, err := redisstore.NewRedisClient(ctx, cfg.CatalogConfig.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Catalog cache unavailable, using seed file only")
		} else {
			app.cache = redisstore.NewCatalogCache(client, cfg.CatalogConfig.CacheTTL)
			sources = append(sources, services.NewCacheCatalogSource(app.cache))
		}
	}
	if cfg.CatalogConfig.SeedFile != "" {
		sources = append(sources, config.NewFileCatalogSource(cfg.CatalogConfig.SeedFile))
	}

	app.catalog = services.NewCatalogService(sources...)
	if err := app.catalog.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Starting with an empty catalog")
	}

	var responder core.Responder
	generator, err := llm.NewGeneratorFromConfig(ctx, cfg.LLMConfig)
	switch {
	case err == nil:
		responder = generator
		logger.Info().Str("provider", generator.Provider()).Str("model", cfg.LLMConfig.Model).Msg("Remote generation enabled")
	case errors.Is(err, model.ErrLLMUnavailable):
		logger.Info().Msg("Remote generation disabled, answering offline")
	default:
		logger.Warn().Err(err).Msg("Remote generation unavailable, answering offline")
	}

	app.sessions = storage.NewSessionManager(cfg.ConversationConfig.SessionTTL, cfg.ConversationConfig.MaxHistoryTurns)
	app.processor, err = core.NewProcessor(ctx, app.sessions, app.catalog, responder, core.Config{
		HistoryWindow: cfg.ConversationConfig.HistoryWindow,
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// background runs the catalog poller, the session sweeper and the metrics endpoint
func (a *application) background(ctx context.Context) {
	go a.catalog.Run(ctx, cfg.CatalogConfig.RefreshInterval)

	if ttl := cfg.ConversationConfig.SessionTTL; ttl > 0 {
		go func() {
			ticker := time.NewTicker(ttl)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed := a.sessions.Sweep(); removed > 0 {
						logger.Debug().Int("removed", removed).Msg("Expired sessions swept")
					}
				}
			}
		}()
	}

	if metricsAddr != "" {
		server := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info().Str("addr", metricsAddr).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}
}

func (a *application) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
