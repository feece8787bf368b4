package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/resolver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Skill is the dispatch core served over HTTP.
type Skill interface {
	HandleTurn(ctx context.Context, turn *cadence.Turn) (*domain.Response, error)
	Resolve(env *domain.Envelope) (resolver.Match, bool)
	Registry() *registry.Registry
}

// AttributesProvider hands out the persistence handle of a user.
type AttributesProvider interface {
	Attributes(key string) ports.AttributesManager
}

// TurnRequest is the body of POST /v1/turns: the envelope fields plus the
// optional deprecated raw user storage.
type TurnRequest struct {
	domain.Envelope
	UserStorage map[string]any `json:"user_storage,omitempty"`
}

// TurnResponse is always returned with status 200 for a well-formed request.
type TurnResponse struct {
	Response    *domain.Response `json:"response"`
	UserStorage map[string]any   `json:"user_storage,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ActionInfo describes a registered action.
type ActionInfo struct {
	Name         string   `json:"name"`
	PlatformName string   `json:"platform_name"`
	Feature      string   `json:"feature"`
	States       []string `json:"states,omitempty"`
	Variants     int      `json:"variants"`
}

// MatchInfo describes a resolution result.
type MatchInfo struct {
	Matched    bool   `json:"matched"`
	Action     string `json:"action,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Rule       string `json:"rule,omitempty"`
}

// Server serves a skill.
type Server struct {
	Skill      Skill
	Attributes AttributesProvider
	Name       string
	Version    string

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithInfo sets the name and version reported by /info.
func WithInfo(name, version string) Option {
	return func(s *Server) {
		s.Name = name
		s.Version = version
	}
}

// NewHandler creates the HTTP handler of a skill. attrs may be nil, in which case
// turns only persist through the raw user storage they carry.
func NewHandler(skill Skill, attrs AttributesProvider, opts ...Option) http.Handler {
	server := &Server{
		Skill:      skill,
		Attributes: attrs,
		Name:       "cadence",
		Version:    cadence.Version,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", server.Health)
	r.Get("/info", server.Info)
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/turns", server.HandleTurn)
		r.Get("/actions", server.ListActions)
		r.Get("/resolve", server.Resolve)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"name": s.Name, "version": s.Version})
}

// HandleTurn handles POST /v1/turns.
func (s *Server) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("HandleTurn: invalid request body", "err", err)
		return
	}

	env := body.Envelope
	turn := &cadence.Turn{Envelope: &env}
	switch {
	case s.Attributes != nil && env.UserID != "":
		turn.Attributes = s.Attributes.Attributes(env.UserID)
	case body.UserStorage != nil:
		turn.LegacyStorage = body.UserStorage
	}

	resp, err := s.Skill.HandleTurn(r.Context(), turn)
	out := TurnResponse{Response: resp, UserStorage: body.UserStorage}
	if out.Response == nil {
		out.Response = &domain.Response{}
	}
	if err != nil {
		// The platform still gets a reply; the failure is reported alongside it.
		out.Error = err.Error()
		s.logger.Error("HandleTurn: turn failed",
			"request_id", middleware.GetReqID(r.Context()),
			"intent", env.IntentName,
			"request_type", env.RequestType,
			"err", err,
		)
	}

	s.writeJSON(w, http.StatusOK, out)
}

// ListActions handles GET /v1/actions.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	reg := s.Skill.Registry()
	actions := make([]ActionInfo, 0, reg.Len())
	for _, name := range reg.Names() {
		a, _ := reg.Get(name)
		info := ActionInfo{
			Name:         a.Name(),
			PlatformName: a.PlatformName(),
			Feature:      a.Feature(),
			Variants:     len(a.Variants()),
		}
		for _, st := range a.States() {
			info.States = append(info.States, string(st))
		}
		actions = append(actions, info)
	}
	s.writeJSON(w, http.StatusOK, actions)
}

// Resolve handles GET /v1/resolve?intent=...&request_type=...
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	env := &domain.Envelope{
		IntentName:  r.URL.Query().Get("intent"),
		RequestType: r.URL.Query().Get("request_type"),
	}
	if !env.HasIdentifier() {
		http.Error(w, "intent or request_type is required", http.StatusBadRequest)
		return
	}

	info := MatchInfo{}
	if m, ok := s.Skill.Resolve(env); ok {
		info = MatchInfo{Matched: true, Action: m.Name, Identifier: m.Identifier, Rule: string(m.Rule)}
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
