package websocket

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/logger"
)

// 心跳间隔，防止代理断开空闲连接
const sseHeartbeat = 15 * time.Second

// sseEvent 所有推送使用同一个事件名，类型在 data 的 type 字段里
const sseEvent = "message"

// ServeEvents GET /api/polls/:id/events，以 SSE 推送与 ServeLive 相同的消息
func (h *Handler) ServeEvents(c *gin.Context) {
	pollID := c.Param("id")

	snapshot, ok := h.loadSnapshot(c, pollID)
	if !ok {
		return
	}

	client := &Client{PollID: pollID, send: make(chan []byte, sendBuffer)}
	client.send <- snapshot
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 长连接不受 http.Server.WriteTimeout 限制，改为每次写入单独设置期限
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("failed to clear sse write deadline", slog.String("poll_id", pollID), logger.Err(err))
	}
	extend := func() {
		_ = rc.SetWriteDeadline(time.Now().Add(writeWait))
	}

	h.log.Info("sse connected", slog.String("poll_id", pollID), slog.String("client_ip", c.ClientIP()))

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-client.send:
			if !ok {
				return false
			}
			extend()
			c.SSEvent(sseEvent, string(payload))
			return true
		case <-heartbeat.C:
			extend()
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.log.Info("sse disconnected", slog.String("poll_id", pollID))
}
