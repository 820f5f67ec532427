package cmd

import (
	"fmt"
	"os"

	"github.com/podforge/podforge-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podforge-api",
	Short: "PodForge podcast generation API server",
	Long: `PodForge API - An automated multi-speaker podcast generation service

This API accepts a topic, URL, plain text, or uploaded document and turns
it into a finished podcast episode: it gathers source material, composes
a multi-speaker dialogue script, synthesizes each turn to speech, and
assembles the audio with a background music bed.

Features:
  • Source acquisition from web search, URLs, raw text, and documents
  • LLM-composed dialogue scripts grounded in the gathered material
  • Deterministic voice assignment from a configured voice pool
  • Concurrent per-turn speech synthesis with ordered assembly
  • Asynchronous job queue with stage-level progress tracking`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		// Skip loading config for version and help commands
		if len(os.Args) > 2 && os.Args[2] == "--help" {
			return // Skip for subcommand help too
		}
		if cmd.Name() == "version" {
			return // Version command doesn't need config
		}
	}

	// Initialize the configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
