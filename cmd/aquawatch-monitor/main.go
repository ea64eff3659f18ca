package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aquawatch-monitor/internal/config"
	"aquawatch-monitor/internal/httpapi"
	"aquawatch-monitor/internal/service"
	"aquawatch-monitor/internal/ws"
	"aquawatch-monitor/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "aquawatch-monitor")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 创建服务（内部会先校验数据库连通性）
	monitorService, err := service.NewMonitorService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create monitor service",
			zap.Error(err),
		)
	}
	defer monitorService.Stop()

	// 4. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. 启动采样管线
	if err := monitorService.Start(ctx); err != nil {
		log.Fatal("Failed to start monitor service",
			zap.Error(err),
		)
	}

	// 6. 启动 HTTP 层（WebSocket 接入 + 模拟器控制）
	router := httpapi.NewRouter(log)
	router.RegisterMonitorRoutes(monitorService.Scheduler(), ws.NewHandler(monitorService.Hub(), log))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	httpErrChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", cfg.HTTP.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrChan <- err
		}
	}()

	// 7. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
	case err := <-httpErrChan:
		log.Fatal("HTTP server error",
			zap.Error(err),
		)
	}

	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.Error("Failed to shut down HTTP server",
			zap.Error(err),
		)
	}

	log.Info("Monitor service stopped")
}
