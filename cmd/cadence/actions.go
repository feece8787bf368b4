package main

import (
	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the registered actions and their state variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		cli.PrintActions(cmd.OutOrStdout(), app)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [intent]",
	Short: "Show which action an intent or request type resolves to",
	Example: `  cadence resolve AMAZON.RestartGameIntent
  cadence resolve --request-type AudioPlayer.PlaybackStarted`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var intent string
		if len(args) == 1 {
			intent = args[0]
		}
		requestType, _ := cmd.Flags().GetString("request-type")
		return cli.PrintResolution(cmd.OutOrStdout(), app, intent, requestType)
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("request-type", "r", "", "Platform request type, e.g. LaunchRequest")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the state dispatch graph as Mermaid",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		userID, _ := cmd.Flags().GetString("user")
		return cli.PrintGraph(cmd.Context(), cmd.OutOrStdout(), app, userID)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("user", "u", "", "Highlight the stored state of this user")
}
