package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/service"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时
	pongWait = 60 * time.Second

	// 发送ping间隔时间，必须小于pongWait
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 512

	sendBuffer = 256
)

// PollReader 连接建立前确认投票存在并取得初始快照
type PollReader interface {
	Get(ctx context.Context, pollID string) (*models.PollView, error)
}

// Handler WebSocket处理器
type Handler struct {
	log      *slog.Logger
	hub      *Hub
	polls    PollReader
	upgrader websocket.Upgrader
}

// NewHandler allowedOrigins 为空或包含 "*" 时不校验 Origin
func NewHandler(log *slog.Logger, hub *Hub, polls PollReader, allowedOrigins []string) *Handler {
	return &Handler{
		log:   log.With(slog.String("handler", "ws")),
		hub:   hub,
		polls: polls,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// TokenFromQuery 浏览器无法给 WebSocket 设置请求头，允许用 ?token= 传递
func TokenFromQuery(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(header) == "" {
			if tok := c.Query("token"); tok != "" {
				c.Request.Header.Set(header, tok)
			}
		}
		c.Next()
	}
}

// loadSnapshot 连接建立前读取投票，失败时已写好响应
func (h *Handler) loadSnapshot(c *gin.Context, pollID string) ([]byte, bool) {
	view, err := h.polls.Get(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, service.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Poll not found"})
			return nil, false
		}
		h.log.Error("failed to load poll", slog.String("poll_id", pollID), logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return nil, false
	}

	snapshot, err := json.Marshal(Message{Type: EventPollSnapshot, PollID: pollID, Poll: view})
	if err != nil {
		h.log.Error("failed to encode snapshot", slog.String("poll_id", pollID), logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		return nil, false
	}
	return snapshot, true
}

// ServeLive GET /api/polls/:id/live
func (h *Handler) ServeLive(c *gin.Context) {
	pollID := c.Param("id")

	snapshot, ok := h.loadSnapshot(c, pollID)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade to websocket", logger.Err(err))
		return
	}

	client := &Client{
		PollID: pollID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	client.send <- snapshot

	h.hub.RegisterClient(client)

	go h.writePump(client)
	go h.readPump(client)

	h.log.Info("websocket connected", slog.String("poll_id", pollID))
}

// readPump 只处理控制帧，客户端消息被丢弃
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.UnregisterClient(client)
		_ = client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket read error", logger.Err(err))
			}
			return
		}
	}
}

// writePump 每条消息单独一帧
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
