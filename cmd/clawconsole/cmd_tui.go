package main

import (
	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/refresh"
	"github.com/user/clawconsole/internal/tui"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().String("tab", console.TabChat, "tab to open first: chat, skills or admin")
	tuiCmd.Flags().String("refresh", "", "cron schedule for reloading the active tab (overrides refresh_schedule)")
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		schedule := cfg.RefreshSchedule
		if cmd.Flags().Changed("refresh") {
			schedule, _ = cmd.Flags().GetString("refresh")
		}
		if err := refresh.Validate(schedule); err != nil {
			return err
		}

		status := &tui.Status{}
		client, err := newClient(cfg, gateway.NavigatorFunc(func(u string) {
			status.Set("Sign-in required: " + u)
		}))
		if err != nil {
			return err
		}
		// The TUI only reads and chats; alerts land on the status line.
		c := console.New(console.Options{
			API:      gateway.NewAPI(client),
			Prompter: console.StaticPrompter{Answer: true, OnAlert: status.Set},
		})

		ctx, cancel := signalContext()
		defer cancel()

		tab, _ := cmd.Flags().GetString("tab")
		return tui.Run(ctx, tui.Options{
			Console:         c,
			Tab:             tab,
			RefreshSchedule: schedule,
			LoginURL:        client.LoginURL(),
		}, status)
	},
}
