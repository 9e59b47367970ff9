package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/tokens"
	"github.com/user/clawconsole/internal/types"
)

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsListCmd, agentsShowCmd, agentsCreateCmd, agentsEditCmd, agentsDeleteCmd, agentsModelsCmd)

	for _, c := range []*cobra.Command{agentsCreateCmd, agentsEditCmd} {
		f := c.Flags()
		f.String("display-name", "", "display name")
		f.String("model", "", "model id (blank for the server default)")
		f.String("trust", "", "trust level: RESTRICTED, STANDARD or ELEVATED")
		f.String("system-prompt", "", "system prompt text")
		f.String("system-prompt-file", "", "read the system prompt from a file")
		f.String("allowed-tools", "", "comma-separated allowed tools")
		f.String("denied-tools", "", "comma-separated denied tools")
		f.String("max-tokens", "", "max tokens per request")
		f.String("max-tool-calls", "", "max tool calls per request")
		c.RegisterFlagCompletionFunc("model", completeModels)
	}
}

// completeModels offers the server's model list for --model.
func completeModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	c, err := newConsole(cmd, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx, cancel := signalContext()
	defer cancel()
	c.Admin.Form.LoadModels(ctx)

	var out []string
	for _, m := range c.Admin.Form.ModelSuggestions() {
		if strings.HasPrefix(m, toComplete) {
			out = append(out, m)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

var agentsModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model ids the server offers for --model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		form := c.Admin.Form
		form.LoadModels(ctx)
		models := form.ModelSuggestions()
		if len(models) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models listed; agents use the server default.")
			return nil
		}
		for _, m := range models {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
		return nil
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage agents",
}

// listErr turns an inline load failure into a command error.
func listErr(verb string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}
	return nil
}

// loadAgents fills the agent selectors, failing when the list could not be
// loaded.
func loadAgents(ctx context.Context, c *console.Console) error {
	if err := c.Admin.Agents.Load(ctx); err != nil {
		return err
	}
	return listErr("load agents", c.Admin.Agents.State().Err)
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Admin.Agents.Load(ctx); err != nil {
			return err
		}
		st := c.Admin.Agents.State()
		if err := listErr("list agents", st.Err); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(st.Agents) == 0 {
			fmt.Fprintln(out, "No agents configured yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTRUST\tMODEL\tMAX TOKENS")
		for _, a := range st.Agents {
			model := string(a.Model)
			if model == "" {
				model = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.AgentID, a.DisplayName, a.TrustLevel, model, a.MaxTokensPerRequest)
		}
		return w.Flush()
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one agent as the edit form would load it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		form := c.Admin.Form
		if err := form.Edit(ctx, types.AgentID(args[0])); err != nil {
			return err
		}
		if !form.IsOpen() {
			return fmt.Errorf("agent %s not found", args[0])
		}
		printFields(cmd, form.Fields())
		return nil
	},
}

func printFields(cmd *cobra.Command, f console.AgentFields) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", f.AgentID)
	fmt.Fprintf(w, "Name\t%s\n", f.DisplayName)
	fmt.Fprintf(w, "Model\t%s\n", f.Model)
	fmt.Fprintf(w, "Trust\t%s\n", f.TrustLevel)
	fmt.Fprintf(w, "Allowed tools\t%s\n", f.AllowedTools)
	fmt.Fprintf(w, "Denied tools\t%s\n", f.DeniedTools)
	fmt.Fprintf(w, "Max tokens\t%s\n", f.MaxTokens)
	fmt.Fprintf(w, "Max tool calls\t%s\n", f.MaxToolCalls)
	w.Flush()
	if f.SystemPrompt != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", f.SystemPrompt)
	}
}

var formFlags = map[string]console.Field{
	"display-name":   console.FieldDisplayName,
	"model":          console.FieldModel,
	"trust":          console.FieldTrustLevel,
	"system-prompt":  console.FieldSystemPrompt,
	"allowed-tools":  console.FieldAllowedTools,
	"denied-tools":   console.FieldDeniedTools,
	"max-tokens":     console.FieldMaxTokens,
	"max-tool-calls": console.FieldMaxToolCalls,
}

// applyFlags copies every flag the operator set into the form.
func applyFlags(cmd *cobra.Command, form *console.AgentForm) error {
	for name, field := range formFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		if err := form.Set(field, v); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("system-prompt-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read system prompt: %w", err)
		}
		if err := form.Set(console.FieldSystemPrompt, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// counterFor loads a tokenizer only when a system prompt is being set.
func counterFor(cmd *cobra.Command) *tokens.Counter {
	if !cmd.Flags().Changed("system-prompt") && !cmd.Flags().Changed("system-prompt-file") {
		return nil
	}
	model, _ := cmd.Flags().GetString("model")
	return tokens.New(strings.TrimSpace(model))
}

func saveForm(ctx context.Context, cmd *cobra.Command, form *console.AgentForm) error {
	if n := form.PromptTokens(); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "System prompt: %d tokens\n", n)
	}
	if err := form.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Agent %s saved.\n", form.Fields().AgentID)
	return nil
}

var agentsCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, counterFor(cmd))
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		form := c.Admin.Form
		form.Create()
		if err := form.Set(console.FieldAgentID, args[0]); err != nil {
			return err
		}
		if err := applyFlags(cmd, form); err != nil {
			return err
		}
		return saveForm(ctx, cmd, form)
	},
}

var agentsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update an existing agent; unset flags keep their values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, counterFor(cmd))
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		form := c.Admin.Form
		if err := form.Edit(ctx, types.AgentID(args[0])); err != nil {
			return err
		}
		if !form.IsOpen() {
			return fmt.Errorf("agent %s not found", args[0])
		}
		if err := applyFlags(cmd, form); err != nil {
			return err
		}
		return saveForm(ctx, cmd, form)
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		err = c.Admin.Form.Delete(ctx, types.AgentID(args[0]))
		if errors.Is(err, console.ErrDeclined) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Agent %s deleted.\n", args[0])
		return nil
	},
}
