package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/fakeapi"
	"github.com/user/clawconsole/internal/types"
)

func init() {
	rootCmd.AddCommand(devserverCmd)
	devserverCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	devserverCmd.Flags().Bool("seed", true, "load sample agents, sessions and audit events")
}

var devserverCmd = &cobra.Command{
	Use:    "devserver",
	Short:  "Serve an in-memory admin API for local testing",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()
		addr, _ := cmd.Flags().GetString("addr")
		api := fakeapi.New()
		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			seedDevData(api, time.Now())
		}

		srv := &http.Server{Addr: addr, Handler: api, ReadHeaderTimeout: 10 * time.Second}
		ctx, cancel := signalContext()
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("devserver listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("devserver: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	},
}

func seedDevData(api *fakeapi.Server, now time.Time) {
	ts := func(ago time.Duration) string { return now.Add(-ago).UTC().Format(time.RFC3339) }

	api.PutAgent(types.Agent{
		AgentID:                types.DefaultAgentID,
		DisplayName:            "Default assistant",
		TrustLevel:             types.TrustStandard,
		AllowedTools:           []string{"search", "read_url"},
		MaxTokensPerRequest:    types.DefaultMaxTokens,
		MaxToolCallsPerRequest: types.DefaultMaxToolCalls,
	})
	api.PutAgent(types.Agent{
		AgentID:                "ops",
		DisplayName:            "Ops bot",
		Model:                  "gpt-4o",
		TrustLevel:             types.TrustElevated,
		SystemPrompt:           "You help the on-call engineer.",
		AllowedTools:           []string{"bash", "search"},
		DeniedTools:            []string{"send_email"},
		MaxTokensPerRequest:    8192,
		MaxToolCallsPerRequest: 20,
	})
	api.AddMapping(types.IdentityMapping{ID: "m-1", ChannelType: "telegram", ChannelUserID: "48213", DisplayName: "Dana", CreatedAt: ts(2 * time.Hour)})
	api.AddMapping(types.IdentityMapping{ID: "m-2", ChannelType: "slack", ChannelUserID: "U02ABC", CreatedAt: ts(26 * time.Hour)})
	api.AddSession(types.Session{ID: "s-1", AgentID: types.DefaultAgentID, Principal: "alice", ChannelType: "telegram", Scope: types.ScopeDM, MessageCount: 14, TotalTokens: 5210, LastActiveAt: ts(3 * time.Minute)})
	api.AddSession(types.Session{ID: "s-2", AgentID: "ops", Principal: "bob", ChannelType: "api", Scope: types.ScopeAPI, MessageCount: 3, TotalTokens: 980, LastActiveAt: ts(5 * time.Hour)})
	for i := 0; i < 45; i++ {
		api.AddAuditEvents(types.AuditEvent{
			Timestamp: ts(time.Duration(i) * 7 * time.Minute),
			EventType: types.EventToolCall,
			Principal: "alice",
			AgentID:   types.OptString(types.DefaultAgentID),
			Action:    "search",
			Outcome:   "SUCCESS",
		})
	}
	api.AddAuditEvents(types.AuditEvent{Timestamp: ts(time.Hour), EventType: types.EventAuthFailure, Action: "login", Outcome: "DENIED"})
	api.SetSkills(
		types.Skill{Name: "bash", Description: "Run shell commands", RiskLevel: types.RiskHigh, RequiresApproval: true},
		types.Skill{Name: "search", Description: "Web search", RiskLevel: types.RiskLow},
		types.Skill{Name: "read_url", Description: "Fetch a page as markdown", RiskLevel: types.RiskMedium},
	)
	api.SetModels("gpt-4o", "gpt-4o-mini", "claude-sonnet")
}
