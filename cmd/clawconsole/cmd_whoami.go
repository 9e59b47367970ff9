package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in operator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		c.User.Load(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), c.User.Name())
		if auth := c.User.Authorities(); len(auth) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(auth, ", "))
		}
		return nil
	},
}
