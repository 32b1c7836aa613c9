package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"glucorisk/assessment"
	"glucorisk/clinical"
	"glucorisk/ml"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

const thresholdNote = "\nOur model predicts diabetes at slightly higher HbA1c and Blood Glucose levels " +
	"compared to standard medical thresholds, and includes Age for further refinement.\n"

type handlers struct {
	svc      *assessment.Service
	history  HistoryStore
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func (h *handlers) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/ready", h.handleReady)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /predict", h.handlePredictText)
	mux.HandleFunc("GET /api/reference", handleReference)
	mux.HandleFunc("GET /api/decision-flow", h.handleDecisionFlow)
	mux.HandleFunc("GET /api/thresholds", h.handleThresholds)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/ws/predict", h.handlePredictWS)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Predictor().Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "model": "not loaded"})
		return
	}
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": "loaded", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.history.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"model":  "loaded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": "loaded", "db": "ok"})
}

// predictRequest uses pointers so an absent field can be told apart from zero.
type predictRequest struct {
	HbA1cLevel        *float64 `json:"hba1c_level"`
	BloodGlucoseLevel *int     `json:"blood_glucose_level"`
	Age               *int     `json:"age"`
}

func (p predictRequest) sample() (clinical.PatientSample, error) {
	var missing []clinical.FieldError
	if p.HbA1cLevel == nil {
		missing = append(missing, clinical.FieldError{Field: "hba1c_level", Message: "is required"})
	}
	if p.BloodGlucoseLevel == nil {
		missing = append(missing, clinical.FieldError{Field: "blood_glucose_level", Message: "is required"})
	}
	if p.Age == nil {
		missing = append(missing, clinical.FieldError{Field: "age", Message: "is required"})
	}
	if len(missing) > 0 {
		return clinical.PatientSample{}, &clinical.ValidationError{Fields: missing}
	}
	s := clinical.PatientSample{
		HbA1cLevel:        *p.HbA1cLevel,
		BloodGlucoseLevel: *p.BloodGlucoseLevel,
		Age:               *p.Age,
	}
	if err := s.Validate(); err != nil {
		return clinical.PatientSample{}, err
	}
	return s, nil
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sample, err := req.sample()
	if err != nil {
		h.writeAssessError(w, err)
		return
	}

	result, err := h.svc.Assess(r.Context(), GetRequestID(r.Context()), sample)
	if err != nil {
		h.writeAssessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handlePredictText(w http.ResponseWriter, r *http.Request) {
	sample, err := sampleFromQuery(r)
	if err != nil {
		writeText(w, statusFor(err), err.Error()+"\n")
		return
	}
	result, err := h.svc.Assess(r.Context(), GetRequestID(r.Context()), sample)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("assessment failed", zap.Error(err))
		}
		writeText(w, statusFor(err), err.Error()+"\n")
		return
	}
	writeText(w, http.StatusOK, result.Text())
}

func sampleFromQuery(r *http.Request) (clinical.PatientSample, error) {
	q := r.URL.Query()
	var req predictRequest
	var fields []clinical.FieldError

	if v := q.Get("hba1c_level"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fields = append(fields, clinical.FieldError{Field: "hba1c_level", Message: "must be a number"})
		} else {
			req.HbA1cLevel = &f
		}
	}
	if v := q.Get("blood_glucose_level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, clinical.FieldError{Field: "blood_glucose_level", Message: "must be an integer"})
		} else {
			req.BloodGlucoseLevel = &n
		}
	}
	if v := q.Get("age"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, clinical.FieldError{Field: "age", Message: "must be an integer"})
		} else {
			req.Age = &n
		}
	}
	if len(fields) > 0 {
		return clinical.PatientSample{}, &clinical.ValidationError{Fields: fields}
	}
	return req.sample()
}

func handleReference(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, clinical.ReferenceRanges)
}

func (h *handlers) handleDecisionFlow(w http.ResponseWriter, r *http.Request) {
	tree := h.svc.Predictor().Tree()
	if tree == nil {
		writeText(w, http.StatusServiceUnavailable, ml.ErrModelUnavailable.Error()+"\n")
		return
	}
	writeText(w, http.StatusOK, "Decision Flow Based on Trained Model\n\n"+tree.Render())
}

func (h *handlers) handleThresholds(w http.ResponseWriter, r *http.Request) {
	tree := h.svc.Predictor().Tree()
	if tree == nil {
		writeText(w, http.StatusServiceUnavailable, ml.ErrModelUnavailable.Error()+"\n")
		return
	}
	writeText(w, http.StatusOK, assessment.ThresholdComparison(tree)+thresholdNote)
}

func (h *handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.history.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.logger.Error("load prediction history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"data":  records,
	})
}

func (h *handlers) writeAssessError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	var verr *clinical.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, status, map[string]interface{}{"error": "invalid sample", "fields": verr.Fields})
	case status == http.StatusServiceUnavailable:
		writeError(w, status, err.Error())
	default:
		h.logger.Error("assessment failed", zap.Error(err))
		writeError(w, status, "internal server error")
	}
}

func statusFor(err error) int {
	var verr *clinical.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
