package http

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"transferdash/internal/core"
	"transferdash/internal/log"
	"transferdash/internal/refresh"
	"transferdash/internal/report"
)

const (
	leaderboardSize = 10
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := s.state.Current()
	view := s.dashboardView(st, r.URL.Query().Get("agent"))

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Dashboard template execution failed", log.FieldError, err, log.FieldOperation, log.OpRender)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type snapshotResponse struct {
	refresh.State
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotResponse{
		State:                  s.state.Current(),
		RefreshIntervalSeconds: int(s.state.Interval() / time.Second),
	})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	snap := s.state.Current().Snapshot
	if name != core.AllAgents && !snap.HasAgent(name) {
		writeError(w, http.StatusNotFound, "unknown agent")
		return
	}
	writeJSON(w, http.StatusOK, snap.Agent(name))
}

type trendResponse struct {
	Period    core.Period `json:"period"`
	Points    core.Series `json:"points"`
	Chartable bool        `json:"chartable"`
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	period := core.ParsePeriod(r.URL.Query().Get("period"))
	points := s.state.Current().Snapshot.Trend(period)
	if points == nil {
		points = core.Series{}
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Trend requested",
		log.FieldPeriod, string(period), "points", len(points))
	writeJSON(w, http.StatusOK, trendResponse{Period: period, Points: points, Chartable: points.Chartable()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)
	snap := s.state.Current().Snapshot
	if s.records != nil {
		records, err := s.records.ReadTransfers(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Warn("Export fetch failed, using last snapshot",
				log.FieldError, err, log.FieldOperation, log.OpExport)
		} else {
			snap = core.Aggregate(records, now)
		}
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, snap, now); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Export failed", err, log.ComponentReport, log.OpExport, nil)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="transfers-`+now.Format("20060102-1504")+`.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 until the first refresh cycle has completed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := s.state.Current()
	code := http.StatusOK
	status := "ready"
	if !st.Ready() {
		code = http.StatusServiceUnavailable
		status = "not_ready"
	}
	writeJSON(w, code, map[string]any{
		"status":      status,
		"data_status": st.Status,
		"updated_at":  st.UpdatedAt,
	})
}
