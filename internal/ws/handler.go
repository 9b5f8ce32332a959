package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/cache"
	"github.com/rentnest/rentnest-server/internal/chat"
	"github.com/rentnest/rentnest-server/internal/metrics"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/services"
)

const (
	readLimit     = 32 * 1024
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type outboundFrame struct {
	Type     string            `json:"type"`
	Message  *models.Message   `json:"message,omitempty"`
	Messages []*models.Message `json:"messages,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Handler serves one websocket per open conversation view: history replay,
// live inserts, and message submission over the same socket.
type Handler struct {
	chats *services.ChatService
	hub   *Hub
	cache *cache.Client
	log   *zap.SugaredLogger
}

func NewHandler(chats *services.ChatService, hub *Hub, c *cache.Client, log *zap.SugaredLogger) *Handler {
	return &Handler{chats: chats, hub: hub, cache: c, log: log}
}

// Serve runs the conversation socket until the client goes away. Every exit
// path releases the subscription.
func (h *Handler) Serve(conn *websocket.Conn) {
	defer conn.Close()

	convID := conn.Params("id")
	userID, _ := conn.Locals("user_id").(string)
	if convID == "" || userID == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv, err := h.chats.Authorize(ctx, convID, userID)
	if err != nil {
		code := "conversation unavailable"
		if errors.Is(err, apperr.ErrForbidden) {
			code = "not a participant"
		} else if errors.Is(err, apperr.ErrNotFound) {
			code = "conversation not found"
		}
		_ = writeJSON(conn, nil, outboundFrame{Type: "error", Error: code})
		return
	}

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()
	_ = h.cache.SetPresence(ctx, userID, true)
	defer func() { _ = h.cache.SetPresence(context.Background(), userID, false) }()

	// Subscribe before listing so no insert falls between snapshot and live
	// stream; the feed absorbs the overlap.
	sub := h.hub.Subscribe(convID)
	defer sub.Close()

	feed := chat.NewFeed()
	defer feed.Close()

	history, err := h.chats.History(ctx, convID, userID)
	if err != nil {
		// degraded: live stream still works, client re-lists over REST
		h.log.Warnw("history load failed", "conversation", convID, "err", err)
		history = nil
	}
	_ = feed.Load(history)

	var writeMu sync.Mutex
	if err := writeJSON(conn, &writeMu, outboundFrame{Type: "history", Messages: feed.Messages()}); err != nil {
		return
	}

	go h.readPump(ctx, cancel, conn, &writeMu, feed, conv, userID)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.C:
			if !ok {
				// hub shut down; tell the client to fall back to re-listing
				_ = writeJSON(conn, &writeMu, outboundFrame{Type: "error", Error: "live updates unavailable"})
				return
			}
			if !feed.Apply(m) {
				continue // duplicate delivery
			}
			if err := writeJSON(conn, &writeMu, outboundFrame{Type: "message", Message: m}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump handles inbound frames: message submission and read receipts.
// Submission is throttled per client and serialized through the feed's
// sending state so a slow append cannot be resubmitted.
func (h *Handler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, writeMu *sync.Mutex, feed *chat.Feed, conv *models.Conversation, userID string) {
	defer cancel()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	limiter := rate.NewLimiter(rate.Every(time.Second), 5)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue // ignore malformed frames, keep the socket
		}

		switch frame.Type {
		case "message":
			if !limiter.Allow() {
				_ = writeJSON(conn, writeMu, outboundFrame{Type: "error", Error: "slow down"})
				continue
			}
			h.submit(ctx, conn, writeMu, feed, conv, userID, frame.Content)
		case "read":
			if err := h.chats.MarkRead(ctx, conv.ID, userID); err != nil {
				h.log.Warnw("mark read failed", "conversation", conv.ID, "err", err)
			}
		}
	}
}

func (h *Handler) submit(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, feed *chat.Feed, conv *models.Conversation, userID, content string) {
	if err := feed.BeginSend(); err != nil {
		_ = writeJSON(conn, writeMu, outboundFrame{Type: "error", Error: "send in progress"})
		return
	}
	m, err := h.chats.Append(ctx, conv.ID, userID, content)
	if err != nil {
		feed.EndSend(nil)
		if errors.Is(err, apperr.ErrValidation) {
			// empty submit is a no-op at this boundary too
			return
		}
		_ = writeJSON(conn, writeMu, outboundFrame{Type: "error", Error: "send failed"})
		return
	}
	if !feed.EndSend(m) {
		// the live stream beat the append return; the frame is already out
		return
	}
	_ = writeJSON(conn, writeMu, outboundFrame{Type: "message", Message: m})
}

func writeJSON(conn *websocket.Conn, mu *sync.Mutex, frame outboundFrame) error {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(frame)
}
