package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Int("page", 1, "page number, starting at 1")
	auditCmd.Flags().String("principal", "", "only events of this principal")
	auditCmd.Flags().String("type", "", "only events of this type, e.g. TOOL_CALL")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Page through the audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		principal, _ := cmd.Flags().GetString("principal")
		typeFlag, _ := cmd.Flags().GetString("type")
		eventType, err := types.ParseEventType(typeFlag)
		if err != nil {
			return err
		}
		if page < 1 {
			return fmt.Errorf("page must be at least 1")
		}

		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		audit := c.Admin.Audit
		audit.SetFilters(principal, eventType)
		if err := audit.Load(ctx, page-1); err != nil {
			return err
		}
		st := audit.State()
		if err := listErr("load audit log", st.Err); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(st.Events) == 0 {
			fmt.Fprintln(out, "No audit events found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tPRINCIPAL\tAGENT\tACTION\tOUTCOME")
		for _, e := range st.Events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				view.FormatTimestamp(e.Timestamp), e.EventType,
				orDash(e.Principal), orDash(e.AgentID), e.Action, orDash(e.Outcome))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if st.ShowsPager() {
			fmt.Fprintf(out, "\nPage %d of %d\n", st.Page+1, st.TotalPages)
		}
		return nil
	},
}

func orDash(s types.OptString) string {
	if s == "" {
		return "-"
	}
	return string(s)
}
