package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 单个订阅的事件缓冲大小；写满即丢（慢消费者不拖慢发布方）
const subscriptionBuffer = 64

// Event 进程内广播事件
type Event struct {
	ID      string      `json:"id"`
	Name    string      `json:"event"`
	Room    string      `json:"room,omitempty"`
	Payload interface{} `json:"payload"`
}

// Subscription 一个订阅者
// 通过 Events() 消费事件；可加入若干房间接收房间定向事件
type Subscription struct {
	hub   *Hub
	ch    chan Event
	mu    sync.Mutex
	rooms map[string]struct{}
}

// Events 订阅者的事件流
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Join 加入房间
func (s *Subscription) Join(room string) {
	if room == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room] = struct{}{}
}

// Leave 退出房间
func (s *Subscription) Leave(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
}

// InRoom 是否已加入指定房间
func (s *Subscription) InRoom(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[room]
	return ok
}

// Close 取消订阅并关闭事件流
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub 进程内事件分发器
// 任意数量订阅者；发布方不因订阅者存在与否或快慢而阻塞
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	logger *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe 注册订阅者，可附带初始房间
func (h *Hub) Subscribe(rooms ...string) *Subscription {
	sub := &Subscription{
		hub:   h,
		ch:    make(chan Event, subscriptionBuffer),
		rooms: make(map[string]struct{}),
	}
	for _, room := range rooms {
		if room != "" {
			sub.rooms[room] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}

	h.logger.Debug("Subscriber registered",
		zap.Int("subscriber_count", len(h.subs)),
	)

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

// SubscriberCount 当前订阅者数量
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish 向所有订阅者广播事件（实现 Sink 接口）
func (h *Hub) Publish(ctx context.Context, event string, payload interface{}) {
	h.deliver(Event{
		ID:      uuid.New().String(),
		Name:    event,
		Payload: payload,
	}, "")
}

// PublishToRoom 只向加入了指定房间的订阅者广播事件
func (h *Hub) PublishToRoom(ctx context.Context, room, event string, payload interface{}) {
	h.deliver(Event{
		ID:      uuid.New().String(),
		Name:    event,
		Room:    room,
		Payload: payload,
	}, room)
}

func (h *Hub) deliver(event Event, room string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for sub := range h.subs {
		if room != "" && !sub.InRoom(room) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// 订阅者缓冲已满，丢弃本条（最多一次、尽力投递）
			h.logger.Debug("Dropping event for slow subscriber",
				zap.String("event", event.Name),
			)
		}
	}
}

// Close 关闭 Hub 并断开所有订阅者
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}
