package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "newsrelay",
	Short: "Relay regional cybersecurity news to a chat webhook",
	Long: `newsrelay asks a search/answer API for recent cybersecurity news relevant to a
region and posts each item to a chat webhook.

Secrets and settings come from the environment (optionally a .env file):
  SECRET_PERPLEXITY_API_KEY, SECRET_SLACK_WEBHOOK_URL, MAX_NEWS_ITEMS`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			_ = godotenv.Load()
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")
	rootCmd.AddCommand(serveCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
