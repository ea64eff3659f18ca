package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"aquawatch-monitor/internal/scheduler"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 WebSocket 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterMonitorRoutes 注册健康检查、WebSocket 接入点和模拟器控制接口
func (r *Router) RegisterMonitorRoutes(sched *scheduler.Scheduler, wsHandler http.Handler) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.HandleHandler("/ws", wsHandler)

	// 模拟器状态
	r.Handle("/api/v1/simulator/status", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, sched.Status())
	})

	// 启动模拟器（重复调用为 no-op），可带 ?interval=<minutes>
	r.Handle("/api/v1/simulator/start", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		interval := 0
		if v := req.URL.Query().Get("interval"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "interval must be a positive integer"})
				return
			}
			interval = n
		}
		sched.Start(interval)
		writeJSON(w, http.StatusOK, sched.Status())
	})

	// 停止模拟器
	r.Handle("/api/v1/simulator/stop", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sched.Stop()
		writeJSON(w, http.StatusOK, sched.Status())
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
