package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsListCmd, mappingsApproveCmd)
}

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Review pending identity mappings",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List identity mappings awaiting approval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Admin.Mappings.Load(ctx); err != nil {
			return err
		}
		st := c.Admin.Mappings.State()
		if err := listErr("list mappings", st.Err); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(st.Mappings) == 0 {
			fmt.Fprintln(out, "No pending identity mappings.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCHANNEL\tUSER\tNAME\tCREATED")
		for _, m := range st.Mappings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				m.ID, m.ChannelType, m.ChannelUserID, m.DisplayName, view.FormatTimestamp(m.CreatedAt))
		}
		return w.Flush()
	},
}

var mappingsApproveCmd = &cobra.Command{
	Use:   "approve <id> <principal>",
	Short: "Approve a mapping as the given jclaw principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		id := types.MappingID(args[0])
		c.Admin.Mappings.SetPrincipal(id, args[1])
		if err := c.Admin.Mappings.Approve(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mapping %s approved.\n", id)
		return nil
	},
}
