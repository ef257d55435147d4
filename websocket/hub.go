package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"poll-voting-backend/logger"
	"poll-voting-backend/models"
)

// 推送消息类型
const (
	EventPollSnapshot = "poll_snapshot"
	EventPollUpdated  = "poll_updated"
	EventPollDeleted  = "poll_deleted"
)

// Message 推送给客户端的消息
type Message struct {
	Type   string           `json:"type"`
	PollID string           `json:"poll_id"`
	Poll   *models.PollView `json:"poll,omitempty"`
}

// Client 订阅单个投票的连接
type Client struct {
	PollID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub 维护每个投票的订阅者并广播变化。实现 service.Publisher
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log.With(slog.String("component", "ws-hub")),
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 处理注册和注销，ctx 取消后关闭所有连接并返回。只能调用一次
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.PollID]; !ok {
				h.clients[client.PollID] = make(map[*Client]struct{})
			}
			h.clients[client.PollID][client] = struct{}{}
			n := len(h.clients[client.PollID])
			h.mu.Unlock()
			h.log.Debug("client registered", slog.String("poll_id", client.PollID), slog.Int("clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			h.log.Debug("client unregistered", slog.String("poll_id", client.PollID))

		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			close(h.done)
			return
		}
	}
}

// removeLocked 调用方持有 mu。重复移除是安全的
func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.PollID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.PollID)
	}
}

// RegisterClient Hub 已停止时直接关闭 client.send
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Size 当前订阅连接总数
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// broadcast 发送缓冲区已满的客户端会被断开
func (h *Hub) broadcast(pollID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode message", slog.String("poll_id", pollID), logger.Err(err))
		return
	}

	// send 只在持有写锁时关闭，读锁下非阻塞发送是安全的
	var slow []*Client
	h.mu.RLock()
	n := len(h.clients[pollID])
	for client := range h.clients[pollID] {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, client := range slow {
			h.removeLocked(client)
		}
		h.mu.Unlock()
		h.log.Warn("dropped slow clients", slog.String("poll_id", pollID), slog.Int("count", len(slow)))
	}

	h.log.Debug("broadcast", slog.String("poll_id", pollID), slog.String("type", msg.Type), slog.Int("clients", n))
}

// PublishPoll 推送最新的投票视图
func (h *Hub) PublishPoll(view models.PollView) {
	h.broadcast(view.ID, Message{Type: EventPollUpdated, PollID: view.ID, Poll: &view})
}

// PublishPollDeleted 通知订阅者投票已删除
func (h *Hub) PublishPollDeleted(pollID string) {
	h.broadcast(pollID, Message{Type: EventPollDeleted, PollID: pollID})
}
