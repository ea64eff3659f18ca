package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aquawatch-monitor/internal/broadcast"
	"aquawatch-monitor/internal/config"
	"aquawatch-monitor/internal/evaluator"
	"aquawatch-monitor/internal/models"
	"aquawatch-monitor/internal/repository"
	"aquawatch-monitor/internal/scheduler"
	"aquawatch-monitor/internal/simulator"
	"aquawatch-monitor/pkg/database"
	pkgmqtt "aquawatch-monitor/pkg/mqtt"
	pkgredis "aquawatch-monitor/pkg/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MonitorService 遥测监测服务（整合各层）
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *pkgmqtt.Client
	logger      *zap.Logger

	// 各层组件
	hub         *broadcast.Hub
	sink        broadcast.Sink
	sensorRepo  *repository.SensorRepository
	readingRepo *repository.ReadingRepository
	alertRepo   *repository.AlertRepository
	generator   *simulator.ReadingGenerator
	evaluator   *evaluator.Evaluator
	scheduler   *scheduler.Scheduler
	alertStatus *AlertStatusService
}

// NewMonitorService 创建监测服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. 连接数据库（模拟循环必须在数据库就绪后才能启动）
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &MonitorService{
		config: cfg,
		db:     db,
		logger: logger,
	}

	// 2. 事件下游：进程内 Hub 永远在，其余按配置接入
	s.hub = broadcast.NewHub(logger)
	fanout := broadcast.Fanout{s.hub}

	if cfg.Events.Stream.Enabled {
		redisClient := pkgredis.NewRedisClient(&cfg.Redis)
		ctx := context.Background()
		if err := pkgredis.Ping(ctx, redisClient); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		s.redisClient = redisClient
		fanout = append(fanout, broadcast.NewStreamSink(redisClient, cfg.Events.Stream.Name, logger))
	}

	if cfg.Events.MQTT.Enabled {
		mqttClient, err := pkgmqtt.NewClient(&cfg.MQTT)
		if err != nil {
			s.closeConnections()
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		s.mqttClient = mqttClient
		fanout = append(fanout, broadcast.NewMQTTSink(mqttClient, cfg.Events.MQTT.TopicPrefix, cfg.MQTT.QoS, logger))
	}

	if cfg.Events.Webhook.Enabled && len(cfg.Events.Webhook.URLs) > 0 {
		// Webhook 只转发告警类事件，读数不外推
		fanout = append(fanout, broadcast.NewWebhookSink(
			cfg.Events.Webhook.URLs,
			[]string{models.EventNewAlert, models.EventAlertUpdated, models.EventAlertAssigned},
			time.Duration(cfg.Events.Webhook.TimeoutSeconds)*time.Second,
			logger,
		))
	}
	s.sink = fanout

	// 3. Repository 层
	s.sensorRepo = repository.NewSensorRepository(db, logger)
	s.readingRepo = repository.NewReadingRepository(db, logger)
	s.alertRepo = repository.NewAlertRepository(db, logger)

	// 4. 核心管线：生成器 → 评估器 → 调度器
	s.generator = simulator.NewReadingGenerator()
	s.evaluator = evaluator.NewEvaluator(cfg, s.alertRepo, s.sensorRepo, s.readingRepo, s.sink, logger)
	s.scheduler = scheduler.NewScheduler(cfg, s.sensorRepo, s.readingRepo, s.generator, s.evaluator, s.sink, logger)

	// 5. 告警生命周期服务（外部 CRUD 层通过它做状态流转）
	s.alertStatus = NewAlertStatusService(s.alertRepo, s.sink, logger)

	return s, nil
}

// Start 启动服务
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service",
		zap.Bool("simulator_enabled", s.config.Simulator.Enabled),
		zap.Int("interval_minutes", s.config.Simulator.IntervalMinutes),
	)

	if s.config.Simulator.Enabled {
		s.scheduler.Start(s.config.Simulator.IntervalMinutes)
	} else {
		s.logger.Info("Sensor simulation disabled by config")
	}

	return nil
}

// Stop 停止服务
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	s.scheduler.Stop()
	s.hub.Close()
	s.closeConnections()

	return nil
}

func (s *MonitorService) closeConnections() {
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis",
				zap.Error(err),
			)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database",
				zap.Error(err),
			)
		}
	}
}

// Hub 进程内事件分发器（WebSocket 桥接层使用）
func (s *MonitorService) Hub() *broadcast.Hub {
	return s.hub
}

// Scheduler 采样调度器（控制接口使用）
func (s *MonitorService) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// AlertStatus 告警生命周期服务
func (s *MonitorService) AlertStatus() *AlertStatusService {
	return s.alertStatus
}

// Evaluator 告警评估器
func (s *MonitorService) Evaluator() *evaluator.Evaluator {
	return s.evaluator
}
