package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("agent", "", "agent to talk to (default agent when empty)")
	chatCmd.Flags().String("model", "", "model override for this conversation")
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with an agent",
	Long: `Send one message, or with no arguments read messages line by line.
In the interactive loop, /clear starts a new conversation and /quit exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Tabs.Activate(ctx, console.TabChat); err != nil {
			return err
		}
		if agent, _ := cmd.Flags().GetString("agent"); agent != "" && agent != string(types.DefaultAgentID) {
			if err := loadAgents(ctx, c); err != nil {
				return err
			}
			if !c.ChatAgents.Select(agent) {
				return fmt.Errorf("unknown agent: %s", agent)
			}
		}
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			if !c.Models.Select(model) {
				return fmt.Errorf("unknown model: %s", model)
			}
		}

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			return sendTurn(ctx, c.Chat, strings.Join(args, " "), out)
		}
		return chatLoop(ctx, c.Chat, cmd.InOrStdin(), out)
	},
}

// sendTurn sends text and prints the reply or error turn that follows it.
func sendTurn(ctx context.Context, chat *console.ChatTab, text string, out io.Writer) error {
	before := len(chat.Transcript())
	if err := chat.Send(ctx, text); err != nil {
		return err
	}
	turns := chat.Transcript()
	if len(turns) <= before {
		return nil
	}
	last := turns[len(turns)-1]
	if last.Role == types.RoleError {
		return fmt.Errorf("%s", strings.TrimPrefix(last.Content, "Error: "))
	}
	fmt.Fprintln(out, last.Content)
	return nil
}

func chatLoop(ctx context.Context, chat *console.ChatTab, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Conversation %s\n", chat.ConversationID())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			chat.Clear()
			fmt.Fprintf(out, "Conversation %s\n", chat.ConversationID())
			continue
		}
		if err := sendTurn(ctx, chat, line, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
