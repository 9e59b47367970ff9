package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsArchiveCmd)
	sessionsListCmd.Flags().String("agent", "", "only sessions of this agent")
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage active sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if agent, _ := cmd.Flags().GetString("agent"); agent != "" {
			// The filter only offers agents the server knows about.
			if err := loadAgents(ctx, c); err != nil {
				return err
			}
			if !c.SessionFilter.Select(agent) {
				return fmt.Errorf("unknown agent: %s", agent)
			}
		}
		if err := c.Admin.Sessions.Load(ctx); err != nil {
			return err
		}
		st := c.Admin.Sessions.State()
		if err := listErr("list sessions", st.Err); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(st.Sessions) == 0 {
			fmt.Fprintln(out, "No active sessions.")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tAGENT\tPRINCIPAL\tCHANNEL\tSCOPE\tMESSAGES\tTOKENS\tLAST ACTIVE")
		for _, s := range st.Sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				s.ID, s.AgentID, s.Principal, s.ChannelType, s.Scope,
				s.MessageCount, s.TotalTokens, view.RelativeTime(s.LastActiveAt, now))
		}
		return w.Flush()
	},
}

var sessionsArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		err = c.Admin.Sessions.Archive(ctx, types.SessionID(args[0]))
		if errors.Is(err, console.ErrDeclined) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s archived.\n", args[0])
		return nil
	},
}
