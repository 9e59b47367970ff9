package main

import (
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/config"
	"github.com/user/clawconsole/internal/refresh"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd, configKeysCmd, configGetCmd, configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

// configCheckers validate values beyond their type before they are stored.
var configCheckers = map[string]func(string) error{
	"refresh_schedule": refresh.Validate,
	"base_url": func(v string) error {
		u, err := url.Parse(v)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("base_url must be an absolute URL, got %q", v)
		}
		return nil
	},
	"log_level": func(v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			return nil
		}
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values, credentials masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		values, err := config.ListValues(cfg, true)
		if err != nil {
			return fmt.Errorf("list config: %w", err)
		}
		for _, f := range config.Fields() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", f.Key, values[f.Key])
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys config set accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTYPE\tSECRET")
		for _, f := range config.Fields() {
			secret := ""
			if f.Secret {
				secret = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Key, f.Kind, secret)
		}
		return w.Flush()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()
		val, err := config.GetValue(cfgPath, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		loadConfig()
		if check, ok := configCheckers[key]; ok {
			if err := check(value); err != nil {
				return err
			}
		}
		if err := config.SetValue(cfgPath, key, value); err != nil {
			return err
		}
		if config.IsSecretKey(key) {
			value = "***"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}
