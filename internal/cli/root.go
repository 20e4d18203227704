package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hookguard",
	Short: "hookguard - command-safety guard for coding agents",
	Long: `hookguard runs as a PreToolUse hook. It classifies each tool call an agent
is about to make (shell commands and file writes) against a taxonomy of
destructive or irreversible operations, blocks the dangerous ones before
they run, and keeps a bounded audit log of every decision.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML file (default: ~/.hookguard/config.yaml)")
}

func Execute() error {
	return rootCmd.Execute()
}
