package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/senank/ashby-screener/internal/ai/gemini"
	"github.com/senank/ashby-screener/internal/ashby"
	"github.com/senank/ashby-screener/internal/github"
	"github.com/senank/ashby-screener/internal/logger"
	"github.com/senank/ashby-screener/internal/pipeline"
	"github.com/senank/ashby-screener/internal/server"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server that grades incoming applications",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address, for example :8080")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(_ *cobra.Command) {
	// Local development keeps its secrets in a .env file; a missing file is fine.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the ashby-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Ashby.ScoreFieldID == "" {
		logger.Fatal("custom field id is required under ashby.score-field-id to store the assessment")
	}

	apiKey, err := resolveAshbyKey(config.Ashby)
	if err != nil {
		logger.Fatal("loading ashby api key",
			zap.Error(err),
			zap.String("hint", "set ASHBY_API_KEY or the 'ashby.api-key-file' key in the configuration file"),
		)
	}

	secret, err := resolveWebhookSecret(config.Ashby)
	if err != nil {
		logger.Fatal("loading webhook secret",
			zap.Error(err),
			zap.String("hint", "set ASHBY_WEBHOOK_SECRET or the 'ashby.webhook-secret' key in the configuration file"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grader, err := newGrader(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the grader", zap.Error(err))
	}

	ats := ashby.New(logger, apiKey)

	var validator pipeline.ProfileValidator
	if config.GitHub != nil && config.GitHub.Enabled {
		validator = github.NewValidator(logger, config.GitHub.MinCommits)
		logger.Info("github validation enabled", zap.Int("min_commits", config.GitHub.MinCommits))
	}

	runner := pipeline.New(ats, grader, validator, config.Ashby.ScoreFieldID, logger)

	srv := server.New(runner, secret, config.Server.PipelineTimeout, logger)

	addr := config.Server.ListenAddr()
	if addr == "" {
		addr = defaultAddr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	logger.Info("listening for webhooks", zap.String("addr", addr))

	select {
	case err := <-errCh:
		logger.Fatal("server failed", zap.Error(err))
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not finish cleanly", zap.Error(err))
	}
}

func newGrader(ctx context.Context, cfg *AIConfig, lg *zap.Logger) (*gemini.Grader, error) {
	apiKey, err := resolveGeminiKey(cfg)
	if err != nil {
		return nil, err
	}

	genLogger := lg.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	graderLogger := logger.WithCommonFields(lg, "gemini", generator.Model())

	return gemini.NewGrader(generator, graderLogger, cfg.Gemini.MaxLogLength), nil
}
