package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/dialogue-engine/internal/events"
	"github.com/redis/go-redis/v9"
)

const (
	keepaliveInterval = 30 * time.Second
	writeWait         = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler streams the events a Broadcaster publishes for one
// conversation, either as Server-Sent Events or over a WebSocket.
type EventsHandler struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewEventsHandler(redisClient *redis.Client, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		redisClient: redisClient,
		logger:      logger,
	}
}

// subscribe waits until Redis confirms the subscription, so nothing
// published afterwards is missed.
func (h *EventsHandler) subscribe(ctx context.Context, conversationID uuid.UUID) (*redis.PubSub, error) {
	pubsub := h.redisClient.Subscribe(ctx, events.Channel(conversationID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return pubsub, nil
}

func (h *EventsHandler) closePubSub(pubsub *redis.PubSub) {
	if err := pubsub.Close(); err != nil {
		h.logger.Error("Failed to close pubsub", "error", err)
	}
}

// ServeSSE handles GET /v1/events/conversations/{conversationID}
func (h *EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	pubsub, err := h.subscribe(r.Context(), conversationID)
	if err != nil {
		h.logger.Error("Failed to subscribe for SSE", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to subscribe to events")
		return
	}
	defer h.closePubSub(pubsub)

	h.logger.Info("SSE connection established",
		"conversation_id", conversationID.String(),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	msgChan := pubsub.Channel()
	keepaliveTicker := time.NewTicker(keepaliveInterval)
	defer keepaliveTicker.Stop()

	h.sendSSE(w, "connected", map[string]any{
		"conversation_id": conversationID.String(),
		"message":         "Connected to event stream",
	})

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "conversation_id", conversationID.String())
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}
			h.sendSSE(w, string(event.Type), event.Data)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (h *EventsHandler) sendSSE(w http.ResponseWriter, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		h.logger.Error("Failed to write event", "error", err)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// ServeWS handles GET /v1/events/conversations/{conversationID}/ws. Every
// published event is forwarded unchanged as a text frame.
func (h *EventsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close() // Ignore error in defer
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	pubsub, err := h.subscribe(ctx, conversationID)
	if err != nil {
		h.logger.Error("Failed to subscribe for WebSocket", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer h.closePubSub(pubsub)

	h.logger.Info("WebSocket connection established",
		"conversation_id", conversationID.String(),
		"remote_addr", r.RemoteAddr)

	// Clients only listen; reading is how a close is noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello, _ := json.Marshal(map[string]string{
		"type":            "connected",
		"conversation_id": conversationID.String(),
	})
	if err := h.writeFrame(conn, websocket.TextMessage, hello); err != nil {
		return
	}

	msgChan := pubsub.Channel()
	ping := time.NewTicker(keepaliveInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket client disconnected", "conversation_id", conversationID.String())
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			if err := h.writeFrame(conn, websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}

		case <-ping.C:
			if err := h.writeFrame(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) writeFrame(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(messageType, data); err != nil {
		h.logger.Warn("Failed to write WebSocket frame", "error", err)
		return err
	}
	return nil
}
