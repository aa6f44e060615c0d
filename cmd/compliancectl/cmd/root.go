// Package cmd contains the CLI commands for compliancectl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/config"
)

var (
	// Used for flags
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compliancectl",
	Short: "Compliance alert extraction and analysis",
	Long: `compliancectl scans compliance alerts from an upstream API (or a
deterministic local simulator), normalizes the drifting payloads into a
fixed 15-column schema, writes them as CSV, and prints summary
statistics.

Examples:
  # Extract 150 open alerts from the simulator
  compliancectl extract --simulate --limit 150

  # Extract from a real upstream
  compliancectl extract --no-simulate --base-url https://api.example.com

  # Run the end-to-end self test
  compliancectl selftest

  # Serve the simulated upstream locally
  compliancectl serve --addr :8080`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
}

// loadConfig returns the file config when --config is set, defaults
// otherwise.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

// PrintError prints an error message and exits if fatal is true.
func PrintError(msg string, fatal bool) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if fatal {
		os.Exit(1)
	}
}
