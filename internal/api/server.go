package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"riskwatch/internal/alerts"
	"riskwatch/internal/cache"
	"riskwatch/internal/catalog"
	"riskwatch/internal/config"
	"riskwatch/internal/history"
	"riskwatch/internal/model"
)

type EngineControl interface {
	Reset()
	UpdateConfig(cfg *config.Config)
}

type Server struct {
	cfg     *config.Manager
	history *history.Store
	alerts  *alerts.Store
	cache   cache.Cache
	catalog *catalog.Catalog
	engine  EngineControl
	logger  *slog.Logger
	version string
}

type statusResponse struct {
	Status     string        `json:"status"`
	Time       string        `json:"time"`
	Version    string        `json:"version"`
	ConfigPath string        `json:"config_path"`
	Countries  int           `json:"countries_tracked"`
	Ingest     ingestStatus  `json:"ingest"`
	Scoring    scoringStatus `json:"scoring"`
}

type ingestStatus struct {
	REST  bool `json:"rest"`
	File  bool `json:"file"`
	Kafka bool `json:"kafka"`
}

type scoringStatus struct {
	Weights    config.SignalWeights     `json:"weights"`
	Confidence config.ConfidenceWeights `json:"confidence"`
}

func Start(ctx context.Context, cfg *config.Manager, historyStore *history.Store, alertsStore *alerts.Store, cacheStore cache.Cache, countries *catalog.Catalog, engine EngineControl, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:     cfg,
		history: historyStore,
		alerts:  alertsStore,
		cache:   cacheStore,
		catalog: countries,
		engine:  engine,
		logger:  logger,
		version: version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/assessments", server.handleAssessments)
	mux.HandleFunc("/assessments/", server.handleAssessment)
	mux.HandleFunc("/alerts", server.handleAlerts)
	mux.HandleFunc("/countries", server.handleCountries)
	mux.HandleFunc("/admin/reset", server.handleReset)

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:    s.version,
		ConfigPath: s.cfg.Path(),
		Countries:  len(s.history.Countries()),
		Ingest: ingestStatus{
			REST:  cfg.Ingest.REST.Enabled,
			File:  cfg.Ingest.File.Enabled,
			Kafka: cfg.Ingest.Kafka.Enabled,
		},
		Scoring: scoringStatus{
			Weights:    cfg.Scoring.Weights,
			Confidence: cfg.Scoring.Confidence,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	codes := s.history.Countries()
	out := make([]model.RiskAssessment, 0, len(codes))
	for _, code := range codes {
		if a, ok := s.history.Latest(code); ok {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/assessments/"))
	if code == "" || strings.Contains(code, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if n := queryInt(r, "history", 0); n > 0 {
		writeJSON(w, http.StatusOK, s.history.Recent(code, n))
		return
	}
	// the cache only holds the latest assessment, so it cannot answer
	// history queries
	if s.cache != nil {
		if data, ok := s.cache.Get(r.Context(), cache.AssessmentKey(code)); ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
			return
		}
	}
	a, ok := s.history.Latest(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no assessment for " + code})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sinceRaw := r.URL.Query().Get("since"); sinceRaw != "" {
		since, err := time.Parse(time.RFC3339, sinceRaw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			return
		}
		writeJSON(w, http.StatusOK, s.alerts.Since(since))
		return
	}
	limit := queryInt(r, "limit", 100)
	writeJSON(w, http.StatusOK, s.alerts.List(limit))
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeJSON(w, http.StatusOK, []model.Country{})
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.engine != nil {
		s.engine.Reset()
	}
	if s.logger != nil {
		s.logger.Info("engine state reset via api")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
