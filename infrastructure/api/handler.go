// Package api exposes the proctoring engine over plain HTTP for callers that do not hold
// a WebSocket, such as an external detector reporting alerts.
package api

import (
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"edusmarthub/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
)

type Handler struct {
	service services.IProctoringService
	log     *slog.Logger
	serving func() bool
	process func() domain.Health
}

// NewHandler builds the HTTP surface. serving reports whether the engine accepts work;
// process, when set, returns the latest process health sample.
func NewHandler(log *slog.Logger, service services.IProctoringService,
	serving func() bool, process func() domain.Health) *Handler {
	return &Handler{service: service, log: log, serving: serving, process: process}
}

// Routes mounts the API; ws, when not nil, is served on /ws.
func (h *Handler) Routes(ws http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/exams/{exam_id}/alerts", h.logged(h.reportAlert))
	mux.HandleFunc("GET /api/exams/{exam_id}/alerts", h.logged(h.listAlerts))
	mux.HandleFunc("GET /api/classrooms/{classroom_id}/status", h.logged(h.classroomStatus))
	mux.HandleFunc("GET /healthz", h.healthz)
	if ws != nil {
		mux.HandleFunc("GET /ws", ws)
	}
	return mux
}

type reportAlertRequest struct {
	StudentID      string           `json:"studentId"`
	Kind           domain.AlertKind `json:"type"`
	Severity       domain.Severity  `json:"severity"`
	Description    string           `json:"description"`
	Metadata       map[string]any   `json:"metadata"`
	IdempotencyKey string           `json:"idempotencyKey"`
}

func (h *Handler) reportAlert(w http.ResponseWriter, r *http.Request) {
	var body reportAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}
	cmd := domain.ReportAlertCommand{
		ExamID:         r.PathValue("exam_id"),
		StudentID:      body.StudentID,
		Kind:           body.Kind,
		Severity:       body.Severity,
		Description:    body.Description,
		Metadata:       body.Metadata,
		IdempotencyKey: body.IdempotencyKey,
	}
	if err := h.service.ReportAlert(r.Context(), cmd); err != nil {
		h.errorResponse(w, err.Error(), errors.MapToHTTPStatus(err))
		return
	}
	h.jsonResponse(w, map[string]any{"accepted": true}, http.StatusAccepted)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("exam_id")
	var filter *domain.Severity
	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, err := domain.ParseSeverity(raw)
		if err != nil {
			h.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = lo.ToPtr(severity)
	}
	list := h.service.ListAlerts(examID, filter)
	h.jsonResponse(w, event.AlertList{
		ExamID: examID,
		Alerts: lo.Ternary(list.Alerts == nil, []domain.Alert{}, list.Alerts),
		Total:  list.Total,
		Count:  list.Filtered,
	}, http.StatusOK)
}

func (h *Handler) classroomStatus(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.service.ClassroomStatus(r.PathValue("classroom_id")), http.StatusOK)
}

type healthResponse struct {
	Status  string         `json:"status"`
	Process *domain.Health `json:"process,omitempty"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.process != nil {
		resp.Process = lo.ToPtr(h.process())
	}
	if h.serving != nil && !h.serving() {
		resp.Status = "unavailable"
		h.jsonResponse(w, resp, http.StatusServiceUnavailable)
		return
	}
	h.jsonResponse(w, resp, http.StatusOK)
}

func (h *Handler) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		h.log.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Response encoding failed", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, map[string]string{"error": message}, status)
}
