package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"glucorisk/assessment"
	"glucorisk/clinical"
)

const (
	wsReadLimit  = 4096
	wsWriteWait  = 10 * time.Second
	wsIdleExpiry = 5 * time.Minute
)

// wsMessage 推送给客户端的消息
type wsMessage struct {
	Type   string                `json:"type"`
	Seq    int                   `json:"seq"`
	Result *assessment.Result    `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
	Fields []clinical.FieldError `json:"fields,omitempty"`
}

// handlePredictWS answers every sample sent on the connection with its
// assessment, in order. Nothing is broadcast between connections.
func (h *handlers) handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	logger := h.logger.With(zap.String("request_id", requestID))
	logger.Debug("websocket client connected")

	conn.SetReadLimit(wsReadLimit)
	for seq := 1; ; seq++ {
		conn.SetReadDeadline(time.Now().Add(wsIdleExpiry))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		msg := h.assessMessage(r, fmt.Sprintf("%s-%d", requestID, seq), payload)
		msg.Seq = seq
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *handlers) assessMessage(r *http.Request, requestID string, payload []byte) wsMessage {
	var req predictRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return wsMessage{Type: "error", Error: "invalid payload"}
	}
	sample, err := req.sample()
	if err == nil {
		var result assessment.Result
		result, err = h.svc.Assess(r.Context(), requestID, sample)
		if err == nil {
			return wsMessage{Type: "result", Result: &result}
		}
	}

	var verr *clinical.ValidationError
	if errors.As(err, &verr) {
		return wsMessage{Type: "error", Error: "invalid sample", Fields: verr.Fields}
	}
	if statusFor(err) == http.StatusInternalServerError {
		h.logger.Error("assessment failed", zap.Error(err))
		return wsMessage{Type: "error", Error: "internal server error"}
	}
	return wsMessage{Type: "error", Error: err.Error()}
}
