package scheduler

import (
	"context"
	"sync"
	"time"

	"aquawatch-monitor/internal/broadcast"
	"aquawatch-monitor/internal/config"
	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// SensorSource 传感器注册中心抽象
type SensorSource interface {
	ListActiveSensors(ctx context.Context) ([]models.Sensor, error)
}

// ReadingStore 读数存储抽象
type ReadingStore interface {
	CreateReading(ctx context.Context, sensorID int, value float64, recordedAt time.Time) (*models.SensorReading, error)
}

// Generator 读数生成器抽象
type Generator interface {
	Generate(sensor models.Sensor) float64
}

// AlertEvaluator 告警评估器抽象
type AlertEvaluator interface {
	Evaluate(ctx context.Context, sensor models.Sensor, reading *models.SensorReading) (*models.Alert, bool, error)
}

// Status 调度器运行状态
type Status struct {
	Running  bool   `json:"running"`
	Interval string `json:"interval"` // active / inactive
}

// Scheduler 采样调度器
// 周期驱动：每个 tick 拉取全部 active 传感器，逐个生成读数、落库、广播、评估告警
type Scheduler struct {
	config    *config.Config
	sensors   SensorSource
	readings  ReadingStore
	generator Generator
	evaluator AlertEvaluator
	sink      broadcast.Sink
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler 创建调度器
func NewScheduler(
	cfg *config.Config,
	sensors SensorSource,
	readings ReadingStore,
	generator Generator,
	evaluator AlertEvaluator,
	sink broadcast.Sink,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		config:    cfg,
		sensors:   sensors,
		readings:  readings,
		generator: generator,
		evaluator: evaluator,
		sink:      sink,
		logger:    logger,
	}
}

// Start 启动周期采样
// 已在运行时为幂等 no-op（不会出现两个并发循环）
// intervalMinutes <= 0 时使用配置默认值；启动后立即执行第一个 tick，不等首个周期
func (s *Scheduler) Start(intervalMinutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Sensor simulation already running")
		return
	}

	if intervalMinutes <= 0 {
		intervalMinutes = s.config.Simulator.IntervalMinutes
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	go s.run(ctx, interval)

	s.logger.Info("Sensor simulation started",
		zap.Int("interval_minutes", intervalMinutes),
	)
}

// run 调度循环；ctx 只控制循环本身，不打断进行中的 tick
func (s *Scheduler) run(ctx context.Context, interval time.Duration) {
	defer close(s.done)

	// 立即执行一次
	s.runTick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sensor simulation loop stopped")
			return
		case <-ticker.C:
			s.runTick()
		}
	}
}

// Stop 停止周期采样并等待循环退出；进行中的 tick 会执行完
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done

	s.logger.Info("Sensor simulation stopped")
}

// Status 查询运行状态
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval := "inactive"
	if s.running {
		interval = "active"
	}
	return Status{
		Running:  s.running,
		Interval: interval,
	}
}

// runTick 执行一轮采样
// 单个传感器失败只记日志，不影响本轮其余传感器，也不影响后续 tick
func (s *Scheduler) runTick() {
	ctx, cancel := s.sensorContext()
	sensors, err := s.sensors.ListActiveSensors(ctx)
	cancel()
	if err != nil {
		s.logger.Error("Failed to list active sensors",
			zap.Error(err),
		)
		return
	}

	simulated := 0
	for _, sensor := range sensors {
		if err := s.processSensor(sensor); err != nil {
			s.logger.Error("Failed to process sensor",
				zap.Int("sensor_id", sensor.SensorID),
				zap.String("sensor_type", sensor.SensorType),
				zap.Error(err),
			)
			continue
		}
		simulated++
	}

	s.logger.Info("Simulated sensor readings",
		zap.Int("sensor_count", len(sensors)),
		zap.Int("simulated", simulated),
	)
}

// processSensor 处理单个传感器：生成读数 → 落库 → 广播 → 告警评估
func (s *Scheduler) processSensor(sensor models.Sensor) error {
	ctx, cancel := s.sensorContext()
	defer cancel()

	value := s.generator.Generate(sensor)

	reading, err := s.readings.CreateReading(ctx, sensor.SensorID, value, time.Now())
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, models.EventSensorReading, models.SensorReadingEvent{
		SensorID:   sensor.SensorID,
		SensorType: sensor.SensorType,
		Value:      value,
		RecordedAt: reading.RecordedAt,
	})

	if _, _, err := s.evaluator.Evaluate(ctx, sensor, reading); err != nil {
		return err
	}

	return nil
}

// sensorContext 单个持久化/评估步骤的限时上下文
// 从 Background 派生：Stop 不打断进行中的 tick，卡住的调用由超时兜底
func (s *Scheduler) sensorContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.config.Simulator.SensorTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
