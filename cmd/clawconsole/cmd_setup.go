package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/config"
	"github.com/user/clawconsole/internal/refresh"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "ClawConsole Setup Wizard")
		fmt.Fprintln(out, "Press Enter to accept the default value shown in brackets.")
		fmt.Fprintln(out)

		// 1. Admin API base URL
		cfg.BaseURL = strings.TrimRight(prompt(scanner, out, "Admin API base URL", cfg.BaseURL), "/")

		// 2. Session cookie copied from a signed-in browser
		cfg.Auth.SessionCookieName = prompt(scanner, out, "Session cookie name", cfg.Auth.SessionCookieName)
		cfg.Auth.SessionCookie = prompt(scanner, out, "Session cookie value", cfg.Auth.SessionCookie)

		// 3. XSRF token (optional; the server usually sets it)
		cfg.Auth.XSRFToken = prompt(scanner, out, "XSRF-TOKEN cookie (optional)", cfg.Auth.XSRFToken)

		// 4. Request timeout
		timeout := prompt(scanner, out, "Request timeout in seconds", strconv.Itoa(cfg.TimeoutSeconds))
		if n, err := strconv.Atoi(timeout); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}

		// 5. TUI refresh schedule (optional)
		schedule := prompt(scanner, out, "TUI refresh schedule, e.g. @every 30s (optional)", cfg.RefreshSchedule)
		if err := refresh.Validate(schedule); err != nil {
			fmt.Fprintf(out, "Ignoring refresh schedule: %v\n", err)
		} else {
			cfg.RefreshSchedule = schedule
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, out io.Writer, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
