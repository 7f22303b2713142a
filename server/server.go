// Package server 以 HTTP 暴露会话操作：创建会话、上报交互与观看时长、拉取下一批内容。
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/history"
	"github.com/rushteam/feedkit/pkg/conv"
	"github.com/rushteam/feedkit/pkg/logging"
	"github.com/rushteam/feedkit/scoring"
	"github.com/rushteam/feedkit/session"
)

// Server 包装 session.Manager 的 HTTP 入口
type Server struct {
	manager *session.Manager
	logger  zerolog.Logger
	handler http.Handler
}

// New 创建 Server 并注册路由
func New(manager *session.Manager, logger zerolog.Logger) *Server {
	s := &Server{manager: manager, logger: logger}
	s.handler = s.routes()
	return s
}

// Handler 返回路由
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.sessionStats)
			r.Delete("/", s.deleteSession)
			r.Get("/more", s.requestBatch)
			r.Post("/interact/{item}/{kind}/{state}", s.toggleInteraction)
			r.Post("/duration/{item}", s.reportDuration)
		})
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// session 按路径参数打开会话，内存中不存在时尝试从快照恢复
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, context.Context, bool) {
	sid := chi.URLParam(r, "sid")
	ctx := logging.ContextWithSessionID(r.Context(), sid)
	sess, err := s.manager.Open(ctx, sid)
	if err != nil {
		s.writeError(ctx, w, err)
		return nil, ctx, false
	}
	return sess, ctx, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create(r.Context())
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID()})
}

func (s *Server) sessionStats(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Stats())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.manager.Delete(chi.URLParam(r, "sid")) {
		s.writeError(r.Context(), w, core.NewDomainError(core.ModuleSession, core.ErrorCodeNotFound, "session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestBatch(w http.ResponseWriter, r *http.Request) {
	sess, ctx, ok := s.session(w, r)
	if !ok {
		return
	}
	batch, err := sess.RequestBatch(ctx)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) toggleInteraction(w http.ResponseWriter, r *http.Request) {
	sess, ctx, ok := s.session(w, r)
	if !ok {
		return
	}
	kind, err := scoring.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	active, err := parseState(chi.URLParam(r, "state"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	rec, err := sess.ToggleInteraction(ctx, chi.URLParam(r, "item"), kind, active)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

// reportDuration 请求体：{"duration": 毫秒}
func (s *Server) reportDuration(w http.ResponseWriter, r *http.Request) {
	sess, ctx, ok := s.session(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(ctx, w, core.WrapDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "decode body", err))
		return
	}
	ms, ok := conv.ToFloat64(body["duration"])
	if !ok {
		s.writeError(ctx, w, core.NewDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "duration must be a number"))
		return
	}
	rec, err := sess.ReportDuration(ctx, chi.URLParam(r, "item"), ms)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

func parseState(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "on", "1":
		return true, nil
	case "false", "off", "0":
		return false, nil
	}
	return false, core.NewDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "state must be true or false")
}

// RecordResponse 是交互记录的响应体
type RecordResponse struct {
	ItemID              string             `json:"item_id"`
	Score               float64            `json:"score"`
	Interactions        map[string]float64 `json:"interactions"`
	ViewDurationSeconds float64            `json:"view_duration_seconds"`
	RewatchCount        int                `json:"rewatch_count"`
}

func recordResponse(rec *history.Record) RecordResponse {
	out := RecordResponse{
		ItemID:              rec.ItemID,
		Score:               rec.Score,
		Interactions:        make(map[string]float64, len(rec.Interactions)),
		ViewDurationSeconds: rec.ViewDurationSeconds,
		RewatchCount:        rec.RewatchCount,
	}
	for k, v := range rec.Interactions {
		out.Interactions[string(k)] = v
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := core.ErrorCodeInternalError
	var de *core.DomainError
	if errors.As(err, &de) {
		code = de.Code
		switch de.Code {
		case core.ErrorCodeInvalidInput:
			status = http.StatusBadRequest
		case core.ErrorCodeNotFound:
			status = http.StatusNotFound
		case core.ErrorCodeUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
