package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/user/clawconsole/internal/types"
)

const apiPrefix = "/admin/api"

// AuditPageSize is the fixed page size the console asks the audit log for.
const AuditPageSize = 20

// AuditQuery selects one window of the audit log.
type AuditQuery struct {
	Page      int
	Size      int
	Principal string
	EventType types.EventType
}

func (q AuditQuery) encode() string {
	size := q.Size
	if size <= 0 {
		size = AuditPageSize
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(size))
	if q.Principal != "" {
		v.Set("principal", q.Principal)
	}
	if q.EventType != "" {
		v.Set("eventType", string(q.EventType))
	}
	return v.Encode()
}

// API wraps Client with one method per admin endpoint.
type API struct {
	c *Client
}

// NewAPI returns the typed endpoint set backed by c.
func NewAPI(c *Client) *API {
	return &API{c: c}
}

// Client returns the underlying gateway client.
func (a *API) Client() *Client { return a.c }

func agentPath(id types.AgentID) string {
	return apiPrefix + "/agents/" + url.PathEscape(string(id))
}

func (a *API) ListAgents(ctx context.Context) ([]types.Agent, error) {
	var agents []types.Agent
	if err := a.c.Do(ctx, apiPrefix+"/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent returns nil without an error when the server answers with no
// agent body.
func (a *API) GetAgent(ctx context.Context, id types.AgentID) (*types.Agent, error) {
	var agent *types.Agent
	if err := a.c.Do(ctx, agentPath(id), nil, &agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// PutAgent upserts agent keyed by its AgentID; the same id goes in the path
// and the body.
func (a *API) PutAgent(ctx context.Context, agent *types.Agent) error {
	_, err := a.c.Request(ctx, agentPath(agent.AgentID), &Options{Method: http.MethodPut, Body: agent})
	return err
}

func (a *API) DeleteAgent(ctx context.Context, id types.AgentID) error {
	_, err := a.c.Request(ctx, agentPath(id), &Options{Method: http.MethodDelete})
	return err
}

func (a *API) ListPendingMappings(ctx context.Context) ([]types.IdentityMapping, error) {
	var mappings []types.IdentityMapping
	if err := a.c.Do(ctx, apiPrefix+"/identity-mappings/pending", nil, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (a *API) ApproveMapping(ctx context.Context, id types.MappingID, principal string) error {
	path := apiPrefix + "/identity-mappings/" + url.PathEscape(string(id)) + "/approve"
	_, err := a.c.Request(ctx, path, &Options{
		Method: http.MethodPost,
		Body:   types.ApproveRequest{JclawPrincipal: principal},
	})
	return err
}

// ListSessions lists active sessions, restricted to agentID when it is set.
func (a *API) ListSessions(ctx context.Context, agentID types.AgentID) ([]types.Session, error) {
	path := apiPrefix + "/sessions"
	if agentID != "" {
		path += "?agentId=" + url.QueryEscape(string(agentID))
	}
	var sessions []types.Session
	if err := a.c.Do(ctx, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (a *API) ArchiveSession(ctx context.Context, id types.SessionID) error {
	path := apiPrefix + "/sessions/" + url.PathEscape(string(id)) + "/archive"
	_, err := a.c.Request(ctx, path, &Options{Method: http.MethodPost})
	return err
}

func (a *API) AuditPage(ctx context.Context, q AuditQuery) (*types.AuditPage, error) {
	var page types.AuditPage
	if err := a.c.Do(ctx, apiPrefix+"/audit?"+q.encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) UserInfo(ctx context.Context) (*types.UserInfo, error) {
	var info types.UserInfo
	if err := a.c.Do(ctx, apiPrefix+"/userinfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (a *API) ListSkills(ctx context.Context) ([]types.Skill, error) {
	var skills []types.Skill
	if err := a.c.Do(ctx, apiPrefix+"/skills", nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (a *API) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	if err := a.c.Do(ctx, apiPrefix+"/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (a *API) SendChat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	var resp types.ChatResponse
	if err := a.c.Do(ctx, apiPrefix+"/chat/send", &Options{Method: http.MethodPost, Body: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
