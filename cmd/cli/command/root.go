package command

// root.go defines the root command and the global flags.

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiURL  string        // API server URL
	timeout time.Duration // per command deadline
)

var rootCmd = &cobra.Command{
	Use:   "playlog",
	Short: "playlog - track the games you play and review",
	Long: `playlog is a command line client for the playlog API. Use it to:
- Search the game catalog and add games
- Track what you are currently playing
- Turn a finished playthrough into a review
- Upload screenshots and save files

Use "playlog <command> --help" to see all options of a command.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("PLAYLOG_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API server URL (env PLAYLOG_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(authCmd, gameCmd, reviewCmd, playingCmd, uploadCmd, profileCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
