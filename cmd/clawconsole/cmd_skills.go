package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(skillsCmd)
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List registered tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Skills.Load(ctx); err != nil {
			return err
		}
		st := c.Skills.State()
		if err := listErr("list skills", st.Err); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(st.Skills) == 0 {
			fmt.Fprintln(out, "No tools registered.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRISK\tAPPROVAL\tDESCRIPTION")
		for _, s := range st.Skills {
			approval := "-"
			if s.RequiresApproval {
				approval = "required"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.RiskLevel, approval, s.Description)
		}
		return w.Flush()
	},
}
