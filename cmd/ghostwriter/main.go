// Ghostwriter is an email drafting assistant. It resolves a recipient name
// against a contact directory, drafts a tone-conditioned email with an LLM,
// holds the draft for human review, and sends it through Gmail on
// confirmation. A web form and a Slack bot drive the same draft lifecycle.
//
// Usage:
//
//	# Start the server with defaults
//	ghostwriter serve
//
//	# Point at a config file
//	ghostwriter serve --config /etc/ghostwriter/config.yaml
//
//	# Configure via environment
//	GHOSTWRITER_SERVER_PORT=9090 GHOSTWRITER_LLM_API_KEY=... ghostwriter serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghostwriter",
	Short: "AI email drafting assistant",
	Long: `Ghostwriter drafts emails from a short intent, holds them for human
review, and sends them through Gmail. It serves a web form and, when
configured, a Slack bot over the same draft session.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ghostwriter server",
	Long: `Start the HTTP server (web form + JSON API) and, when Slack is
configured, the Socket Mode bot.

Examples:
  # Start with defaults
  ghostwriter serve

  # Use a config file
  ghostwriter serve --config ~/.config/ghostwriter/config.yaml`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghostwriter\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
