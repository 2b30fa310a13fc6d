package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/senank/ashby-screener/internal/secrets"
)

const (
	app = "ashby-screener"
)

type Config struct {
	Server *ServerConfig `mapstructure:"server"`
	Ashby  *AshbyConfig  `mapstructure:"ashby"`
	GitHub *GitHubConfig `mapstructure:"github"`
	AI     *AIConfig     `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Port            string        `mapstructure:"port"`
	PipelineTimeout time.Duration `mapstructure:"pipeline-timeout"`
}

// ListenAddr resolves the listen address, letting a bare port (the PORT
// environment variable on most hosting platforms) stand in for a full one.
func (c *ServerConfig) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	if c.Port != "" {
		return ":" + c.Port
	}
	return ""
}

type AshbyConfig struct {
	APIKey        string `mapstructure:"api-key"`
	APIKeyFile    string `mapstructure:"api-key-file"`
	WebhookSecret string `mapstructure:"webhook-secret"`
	ScoreFieldID  string `mapstructure:"score-field-id"`
}

type GitHubConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MinCommits int  `mapstructure:"min-commits"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ashby-screener grades incoming Ashby applications with an AI model and writes the score back",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ashby.api-key":        "ASHBY_API_KEY",
		"ashby.webhook-secret": "ASHBY_WEBHOOK_SECRET",
		"ai.gemini.api-key":    "GEMINI_API_KEY",
		"server.port":          "PORT",
	}

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ashby-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional; env-only deployments are supported. An
	// explicitly requested file must still parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Ashby == nil {
		config.Ashby = &AshbyConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}

func resolveAshbyKey(cfg *AshbyConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "ashby api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "ASHBY_API_KEY",
	})
}

func resolveWebhookSecret(cfg *AshbyConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "webhook secret",
		Value: cfg.WebhookSecret,
		Env:   "ASHBY_WEBHOOK_SECRET",
	})
}

func resolveGeminiKey(cfg *AIConfig) (string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	return key, nil
}
