package ws

import (
	"net/http"

	"aquawatch-monitor/internal/broadcast"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler WebSocket 接入点
// 每条连接订阅 Hub，把核心管线的事件实时推给已连接客户端
// 离线期间的事件不补发：客户端重连后自行走查询接口拉当前状态
type Handler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler 创建 WebSocket 接入点
func NewHandler(hub *broadcast.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域校验交给外层网关
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP 升级连接并启动读写泵
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection",
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn:   conn,
		sub:    h.hub.Subscribe(),
		logger: h.logger,
	}

	h.logger.Info("WebSocket client connected",
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	go c.writePump()
	go c.readPump()
}
