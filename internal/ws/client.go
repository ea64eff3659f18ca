package ws

import (
	"encoding/json"
	"time"

	"aquawatch-monitor/internal/broadcast"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// 写一条消息给对端的最长时间
	writeWait = 10 * time.Second
	// 两次 pong 之间允许的最长间隔
	pongWait = 60 * time.Second
	// ping 周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 客户端上行消息大小上限（只允许 join/leave 控制消息）
	maxMessageSize = 512
)

// clientMessage 客户端上行控制消息
type clientMessage struct {
	Action string `json:"action"` // join_room / leave_room
	Room   string `json:"room"`
}

// client 一条 WebSocket 连接与 Hub 订阅的桥接
type client struct {
	conn   *websocket.Conn
	sub    *broadcast.Subscription
	logger *zap.Logger
}

// readPump 读取客户端控制消息（join_room/leave_room），连接断开时取消订阅
func (c *client) readPump() {
	defer func() {
		c.sub.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("WebSocket read error",
					zap.Error(err),
				)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Debug("Ignoring malformed client message",
				zap.Error(err),
			)
			continue
		}

		switch msg.Action {
		case "join_room":
			c.sub.Join(msg.Room)
			c.logger.Debug("Client joined room",
				zap.String("room", msg.Room),
			)
		case "leave_room":
			c.sub.Leave(msg.Room)
		}
	}
}

// writePump 把订阅到的事件推给客户端，并按周期发 ping
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.sub.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了订阅
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Debug("WebSocket write error",
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
