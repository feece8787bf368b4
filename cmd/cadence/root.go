package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/internal/demo"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence is a state-aware dispatch core for voice skills",
	Long: `Cadence routes voice platform requests to named actions, selects the handler
variant for the user's conversation state and persists grouped attributes between turns.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "cadence.yaml", "Path to the configuration file (yaml or json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// newApp builds the demo skill from the configuration selected by the command flags.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := demo.Registry()
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cli.Options{Config: cfg, Debug: debug, LogOutput: os.Stderr}, reg)
}
