// Package gateway is the HTTP surface of the guide daemon. Frontends post
// intents here and read back plans, execution results, and the pending
// output queues for each presentation channel.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nongnai/nongnai/internal/action"
	"github.com/nongnai/nongnai/internal/analyzer"
	"github.com/nongnai/nongnai/internal/executor"
	"github.com/nongnai/nongnai/internal/intent"
	"github.com/nongnai/nongnai/internal/metrics"
	"github.com/nongnai/nongnai/internal/schedule"
	"github.com/nongnai/nongnai/internal/template"
	"github.com/nongnai/nongnai/pkg/logx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultHistoryLimit = 20

type Server struct {
	resolver  *intent.Resolver
	exec      *executor.Executor
	templates *template.Registry
	mappings  *intent.Mapper
	metrics   *metrics.Metrics
	analyzer  analyzer.Analyzer
	scheduler *schedule.Scheduler
	hub       *hub
}

// Config carries the collaborators the server exposes. Analyzer and
// Scheduler are optional; their routes 404 or degrade when absent.
type Config struct {
	Resolver  *intent.Resolver
	Executor  *executor.Executor
	Templates *template.Registry
	Mappings  *intent.Mapper
	Metrics   *metrics.Metrics
	Analyzer  analyzer.Analyzer
	Scheduler *schedule.Scheduler
}

func New(cfg Config) *Server {
	return &Server{
		resolver:  cfg.Resolver,
		exec:      cfg.Executor,
		templates: cfg.Templates,
		mappings:  cfg.Mappings,
		metrics:   cfg.Metrics,
		analyzer:  cfg.Analyzer,
		scheduler: cfg.Scheduler,
		hub:       newHub(),
	}
}

// Notify broadcasts a finished execution to stream subscribers. Wire it as
// the executor's notifier.
func (s *Server) Notify(res executor.Result) {
	s.hub.broadcast(res)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/plans", s.handleBuildPlan)
	mux.HandleFunc("POST /v1/executions", s.handleExecute)
	mux.HandleFunc("GET /v1/executions", s.handleHistory)
	mux.HandleFunc("GET /v1/executions/{id}", s.handleActive)
	mux.HandleFunc("POST /v1/respond", s.handleRespond)
	mux.HandleFunc("PUT /v1/templates/{category}/{name}", s.handlePutTemplate)
	mux.HandleFunc("GET /v1/templates/{category}", s.handleListTemplates)
	mux.HandleFunc("PUT /v1/intents/{intent}", s.handlePutIntent)
	mux.HandleFunc("GET /v1/intents", s.handleListIntents)
	mux.HandleFunc("GET /v1/outputs", s.handleOutputs)
	mux.HandleFunc("DELETE /v1/outputs", s.handleClearOutputs)
	mux.HandleFunc("GET /v1/announcements", s.handleAnnouncements)
	mux.HandleFunc("POST /v1/announcements/{name}/run", s.handleRunAnnouncement)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return mux
}

type planRequest struct {
	Intent      string         `json:"intent"`
	Parameters  map[string]any `json:"parameters"`
	Confidence  float64        `json:"confidence"`
	ExecutionID string         `json:"execution_id"`
	Text        string         `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}
	plan := s.buildPlan(r.Context(), req)
	writeJSON(w, http.StatusOK, plan)
}

// buildPlan assembles the plan and, when the request carries the user's raw
// utterance and an analyzer is configured, stashes the emotion analysis in
// the plan metadata for the renderer.
func (s *Server) buildPlan(ctx context.Context, req planRequest) *action.Plan {
	plan := s.resolver.BuildPlan(req.Intent, req.Parameters, req.Confidence)
	if s.metrics != nil {
		s.metrics.PlansBuilt.Inc()
	}
	if req.Text != "" && s.analyzer != nil {
		a, err := s.analyzer.Analyze(ctx, req.Text)
		if err != nil {
			logx.Warn().Err(err).Msg("gateway: analysis failed")
		} else {
			plan.Metadata["analysis"] = a
		}
	}
	return plan
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}
	plan := s.buildPlan(r.Context(), req)
	res := s.exec.Execute(r.Context(), plan, req.ExecutionID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.exec.History(limit))
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	res, ok := s.exec.Active(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active execution with that id")
		return
	}
	writeJSON(w, http.StatusOK, &res)
}

type respondRequest struct {
	Intent     string         `json:"intent"`
	Parameters map[string]any `json:"parameters"`
	Text       string         `json:"text"`
}

type respondResponse struct {
	intent.FlatResponse
	Analysis *analyzer.Analysis `json:"analysis,omitempty"`
}

// handleRespond is the compact single-action projection used by thin
// frontends. When the request carries the user's raw text and an analyzer is
// configured, the emotion analysis rides along in the response.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp := respondResponse{FlatResponse: s.resolver.Flatten(req.Intent, req.Parameters)}
	if req.Text != "" && s.analyzer != nil {
		a, err := s.analyzer.Analyze(r.Context(), req.Text)
		if err != nil {
			logx.Warn().Err(err).Msg("gateway: analysis failed")
		} else {
			resp.Analysis = &a
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	category := template.Category(r.PathValue("category"))
	name := r.PathValue("name")

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.templates.Register(category, name, payload); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, template.ErrUnknownCategory) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"registered": name})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	category := template.Category(r.PathValue("category"))
	names := s.templates.Names(category)
	if names == nil {
		writeError(w, http.StatusNotFound, "unknown template category")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": names})
}

func (s *Server) handlePutIntent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("intent")

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.mappings.RegisterJSON(name, payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"registered": name})
}

func (s *Server) handleListIntents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"intents": s.mappings.Intents()})
}

func (s *Server) handleOutputs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.exec.Outputs().All())
}

func (s *Server) handleClearOutputs(w http.ResponseWriter, _ *http.Request) {
	s.exec.Outputs().Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, _ *http.Request) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusOK, []schedule.Announcement{})
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.List())
}

func (s *Server) handleRunAnnouncement(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusNotFound, "no scheduler configured")
		return
	}
	name := r.PathValue("name")
	if err := s.scheduler.RunNow(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"triggered": name})
}

func decodePlanRequest(w http.ResponseWriter, r *http.Request) (planRequest, bool) {
	// Confidence defaults to full when the caller omits it; an explicit zero
	// survives the decode.
	req := planRequest{Confidence: 1.0}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Intent == "" {
		writeError(w, http.StatusBadRequest, "intent is required")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("gateway: writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe blocks until ctx is cancelled, then shuts the server down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logx.Info().Str("addr", addr).Msg("gateway: listening")

	select {
	case <-ctx.Done():
		s.hub.closeAll()
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
