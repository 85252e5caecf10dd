package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DeafMist/cybernews-relay/internal/config"
	"github.com/DeafMist/cybernews-relay/internal/logger"
	"github.com/DeafMist/cybernews-relay/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workflow once and exit",
	Long: `Run fetches and relays news a single time in the foreground.

Failures are logged; the exit status does not reflect the outcome of the run.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.New("relay")
		workflow.New(log).Invoke(context.Background(), workflow.TriggerCLI, config.LoadRelay)
	},
}
