package cmd

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/senank/ashby-screener/internal/ashby"
	"github.com/senank/ashby-screener/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Ashby webhook subscription",
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register the application submit webhook with Ashby",
	Run: func(cmd *cobra.Command, _ []string) {
		client, lg := newAshbyClient()

		secret, err := resolveWebhookSecret(mustConfig(lg).Ashby)
		if err != nil {
			lg.Fatal("loading webhook secret", zap.Error(err))
		}

		url, _ := cmd.Flags().GetString("url")

		webhook, err := client.CreateWebhook(context.Background(), ashby.WebhookTypeApplicationSubmit, url, secret)
		if err != nil {
			lg.Fatal("creating webhook", zap.Error(err))
		}

		lg.Info("webhook created",
			zap.String("id", webhook.ID),
			zap.String("request_url", webhook.RequestURL),
			zap.String("webhook_type", webhook.WebhookType),
		)
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <webhook-id>",
	Short: "Delete a webhook subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		client, lg := newAshbyClient()
		webhookID := args[0]

		prompt := promptui.Select{
			Label: "Delete webhook " + webhookID + "?",
			Items: []string{PromptYes, PromptNo},
		}

		_, answer, err := prompt.Run()
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}

		if answer != PromptYes {
			lg.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}

		if err := client.DeleteWebhook(context.Background(), webhookID); err != nil {
			lg.Fatal("deleting webhook", zap.Error(err))
		}

		lg.Info("webhook deleted", zap.String("id", webhookID))
	},
}

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage the Ashby custom field that stores the assessment",
}

var fieldCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the custom field that stores the assessment",
	Run: func(cmd *cobra.Command, _ []string) {
		client, lg := newAshbyClient()

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")

		field, err := client.CreateApplicationField(context.Background(), title, "String", description)
		if err != nil {
			lg.Fatal("creating custom field", zap.Error(err))
		}

		lg.Info("custom field created",
			zap.String("id", field.ID),
			zap.String("title", field.Title),
			zap.String("hint", "set this id under ashby.score-field-id"),
		)
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)

	rootCmd.AddCommand(fieldCmd)
	fieldCmd.AddCommand(fieldCreateCmd)

	webhookCreateCmd.Flags().StringP("url", "u", "", "public URL Ashby should deliver webhooks to")
	webhookCreateCmd.MarkFlagRequired("url")

	fieldCreateCmd.Flags().StringP("title", "t", "AI Assessment", "title of the custom field")
	fieldCreateCmd.Flags().String("description", "Automated resume assessment", "description of the custom field")
}

// newAshbyClient builds the API client shared by the management commands.
func newAshbyClient() (*ashby.Client, *zap.Logger) {
	_ = godotenv.Load()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	apiKey, err := resolveAshbyKey(mustConfig(lg).Ashby)
	if err != nil {
		lg.Fatal("loading ashby api key",
			zap.Error(err),
			zap.String("hint", "set ASHBY_API_KEY or the 'ashby.api-key-file' key in the configuration file"),
		)
	}

	return ashby.New(lg, apiKey), lg
}

func mustConfig(lg *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	return config
}
