// internal/fakeapi/server.go
package fakeapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/user/clawconsole/internal/types"
)

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
	XSRF   string
}

type failure struct {
	status  int
	message string
}

// Server is an in-memory admin API with the same routes and payloads as the
// real one. It records every request and can be told to fail, reject
// authentication or hold chat turns.
type Server struct {
	mu       sync.Mutex
	agents   map[types.AgentID]types.Agent
	mappings []types.IdentityMapping
	sessions []types.Session
	audit    []types.AuditEvent
	skills   []types.Skill
	models   []string
	user     types.UserInfo

	xsrf       string
	authStatus int
	failures   map[string]failure
	chatHold   chan struct{}
	chatReply  func(types.ChatRequest) string
	requests   []Request

	router chi.Router
}

// New creates an empty Server.
func New() *Server {
	s := &Server{
		agents:   make(map[types.AgentID]types.Agent),
		failures: make(map[string]failure),
		user:     types.UserInfo{Name: "operator", Authorities: []string{"ROLE_ADMIN"}},
	}
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/admin/api", func(r chi.Router) {
		r.Get("/agents", s.handle(s.handleListAgents))
		r.Get("/agents/{id}", s.handle(s.handleGetAgent))
		r.Put("/agents/{id}", s.handle(s.handlePutAgent))
		r.Delete("/agents/{id}", s.handle(s.handleDeleteAgent))
		r.Get("/identity-mappings/pending", s.handle(s.handlePendingMappings))
		r.Post("/identity-mappings/{id}/approve", s.handle(s.handleApproveMapping))
		r.Get("/sessions", s.handle(s.handleListSessions))
		r.Post("/sessions/{id}/archive", s.handle(s.handleArchiveSession))
		r.Get("/audit", s.handle(s.handleAudit))
		r.Get("/userinfo", s.handle(s.handleUserInfo))
		r.Get("/skills", s.handle(s.handleSkills))
		r.Get("/models", s.handle(s.handleModels))
		r.Post("/chat/send", s.handle(s.handleChat))
	})
	s.router = r
	return s
}

// ServeHTTP delegates to the router, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// --- seeding and control ---

func (s *Server) PutAgent(a types.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.AgentID] = a
}

func (s *Server) AddMapping(m types.IdentityMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = append(s.mappings, m)
}

func (s *Server) AddSession(sess types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sess)
}

func (s *Server) AddAuditEvents(events ...types.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, events...)
}

func (s *Server) SetSkills(skills ...types.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills = skills
}

func (s *Server) SetModels(models ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = models
}

func (s *Server) SetUser(u types.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// RequireXSRF makes every mutation without a matching X-XSRF-TOKEN header
// fail with 403.
func (s *Server) RequireXSRF(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xsrf = token
}

// RejectAuth answers every request with status (401 or 403). Zero restores
// normal service.
func (s *Server) RejectAuth(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authStatus = status
}

// Fail makes the route "METHOD /admin/api/pattern" answer with status and a
// plain-text message until Recover is called.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// Recover clears every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// SetChatReply replaces the default "echo: MESSAGE" reply.
func (s *Server) SetChatReply(fn func(types.ChatRequest) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatReply = fn
}

// HoldChat blocks chat turns until the returned release func is called.
// Each hold is released exactly once.
func (s *Server) HoldChat() (release func()) {
	hold := make(chan struct{})
	s.mu.Lock()
	s.chatHold = hold
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.chatHold == hold {
				s.chatHold = nil
			}
			s.mu.Unlock()
			close(hold)
		})
	}
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// --- plumbing ---

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			XSRF:   r.Header.Get("X-XSRF-TOKEN"),
		})
		authStatus := s.authStatus
		xsrf := s.xsrf
		s.mu.Unlock()

		if authStatus != 0 {
			http.Error(w, "login required", authStatus)
			return
		}
		mutating := r.Method != http.MethodGet && r.Method != http.MethodHead
		if mutating && xsrf != "" && r.Header.Get("X-XSRF-TOKEN") != xsrf {
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handle wraps fn with the injected-failure check for its route pattern.
func (s *Server) handle(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
		s.mu.Lock()
		f, ok := s.failures[route]
		s.mu.Unlock()
		if ok {
			http.Error(w, f.message, f.status)
			return
		}
		fn(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("fakeapi encode failed", "error", err)
	}
}

// --- handlers ---

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	agents := make([]types.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		agents = append(agents, a)
	}
	s.mu.Unlock()
	sort.Slice(agents, func(i, j int) bool { return agents[i].AgentID < agents[j].AgentID })
	writeJSON(w, agents)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := types.AgentID(chi.URLParam(r, "id"))
	s.mu.Lock()
	a, ok := s.agents[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Agent not found: "+string(id), http.StatusNotFound)
		return
	}
	writeJSON(w, a)
}

func (s *Server) handlePutAgent(w http.ResponseWriter, r *http.Request) {
	id := types.AgentID(chi.URLParam(r, "id"))
	var a types.Agent
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if a.AgentID != id {
		http.Error(w, "Agent ID in path must match body", http.StatusBadRequest)
		return
	}
	s.PutAgent(a)
	writeJSON(w, a)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := types.AgentID(chi.URLParam(r, "id"))
	s.mu.Lock()
	_, ok := s.agents[id]
	delete(s.agents, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Agent not found: "+string(id), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePendingMappings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := make([]types.IdentityMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		if !m.Approved {
			pending = append(pending, m)
		}
	}
	s.mu.Unlock()
	writeJSON(w, pending)
}

func (s *Server) handleApproveMapping(w http.ResponseWriter, r *http.Request) {
	id := types.MappingID(chi.URLParam(r, "id"))
	var req types.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.JclawPrincipal) == "" {
		http.Error(w, "jclawPrincipal is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mappings {
		if s.mappings[i].ID == id {
			s.mappings[i].JclawPrincipal = types.OptString(req.JclawPrincipal)
			s.mappings[i].Approved = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "Mapping not found: "+string(id), http.StatusNotFound)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	agentID := types.AgentID(r.URL.Query().Get("agentId"))
	s.mu.Lock()
	out := make([]types.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if agentID == "" || sess.AgentID == agentID {
			out = append(out, sess)
		}
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleArchiveSession(w http.ResponseWriter, r *http.Request) {
	id := types.SessionID(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "Session not found: "+string(id), http.StatusNotFound)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	principal := q.Get("principal")
	eventType := q.Get("eventType")

	s.mu.Lock()
	var matched []types.AuditEvent
	for _, e := range s.audit {
		if principal != "" && string(e.Principal) != principal {
			continue
		}
		if eventType != "" && string(e.EventType) != eventType {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.Unlock()

	totalPages := (len(matched) + size - 1) / size
	content := []types.AuditEvent{}
	if start := page * size; start < len(matched) {
		end := min(start+size, len(matched))
		content = matched[start:end]
	}
	writeJSON(w, types.AuditPage{Content: content, Number: page, TotalPages: totalPages})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.user
	s.mu.Unlock()
	writeJSON(w, u)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	skills := append([]types.Skill{}, s.skills...)
	s.mu.Unlock()
	writeJSON(w, skills)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	models := append([]string{}, s.models...)
	s.mu.Unlock()
	writeJSON(w, models)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	hold := s.chatHold
	reply := s.chatReply
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = types.DefaultAgentID
	}
	text := "echo: " + req.Message
	if reply != nil {
		text = reply(req)
	}
	writeJSON(w, types.ChatResponse{Response: text, AgentID: agentID})
}
