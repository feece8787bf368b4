package main

import (
	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var attrsCmd = &cobra.Command{
	Use:   "attrs",
	Short: "Manage persisted user attributes",
	Long:  `List, inspect, and remove attribute documents in the configured store.`,
}

var attrsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every stored key",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ListAttributeKeys(cmd.Context(), cmd.OutOrStdout(), app)
	},
}

var attrsGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Print the attribute document of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.PrintAttributes(cmd.Context(), cmd.OutOrStdout(), app, args[0])
	},
}

var attrsRmCmd = &cobra.Command{
	Use:   "rm <user-id>...",
	Short: "Remove the attribute documents of one or more users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, key := range args {
			if err := cli.DeleteAttributes(cmd.Context(), cmd.OutOrStdout(), app, key); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attrsCmd)
	attrsCmd.AddCommand(attrsLsCmd)
	attrsCmd.AddCommand(attrsGetCmd)
	attrsCmd.AddCommand(attrsRmCmd)
}
