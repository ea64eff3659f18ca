package evaluator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aquawatch-monitor/internal/broadcast"
	"aquawatch-monitor/internal/config"
	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// AlertStore 告警存储抽象（repository.AlertRepository 实现；测试中用 fake 替换）
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	FindFreshAlert(ctx context.Context, sensorID int, alertType string, since time.Time, statuses []string) (*models.Alert, error)
}

// SensorSource 传感器注册中心抽象
type SensorSource interface {
	ListActiveSensors(ctx context.Context) ([]models.Sensor, error)
}

// ReadingSource 读数查询抽象（CheckAllSensors 用）
type ReadingSource interface {
	LatestReading(ctx context.Context, sensorID int) (*models.SensorReading, error)
}

// Evaluator 阈值告警评估器
// 对每条读数做阈值分类，并在 60 分钟去重窗口内保证同 (sensor, type) 至多一条新鲜告警
type Evaluator struct {
	config   *config.Config
	alerts   AlertStore
	sensors  SensorSource
	readings ReadingSource
	sink     broadcast.Sink
	logger   *zap.Logger

	// check-then-insert 去重临界区的按键互斥锁
	locks keyedMutex

	// 可注入时钟（测试用）
	now func() time.Time
}

// NewEvaluator 创建评估器
func NewEvaluator(
	cfg *config.Config,
	alerts AlertStore,
	sensors SensorSource,
	readings ReadingSource,
	sink broadcast.Sink,
	logger *zap.Logger,
) *Evaluator {
	return &Evaluator{
		config:   cfg,
		alerts:   alerts,
		sensors:  sensors,
		readings: readings,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}
}

// classification 一次阈值分类的结果
type classification struct {
	severity string
	// 标题里的级别词（CRITICAL / HIGH）
	tier string
	// 标题里的方向描述（extremely low / low / extremely high / high）
	direction string
	// 越下界还是越上界
	belowBound bool
}

// classify 按顺序匹配：critical_low、low、critical_high、high；都不命中返回 nil
// critical 边界严格在 low/high 边界之外，所以先判 critical 即"首个命中即返回"
func classify(bounds models.ThresholdBounds, value float64) *classification {
	switch {
	case value < bounds.CriticalLow:
		return &classification{severity: models.SeverityCritical, tier: "CRITICAL", direction: "extremely low", belowBound: true}
	case value < bounds.Low:
		return &classification{severity: models.SeverityHigh, tier: "HIGH", direction: "low", belowBound: true}
	case value > bounds.CriticalHigh:
		return &classification{severity: models.SeverityCritical, tier: "CRITICAL", direction: "extremely high", belowBound: false}
	case value > bounds.High:
		return &classification{severity: models.SeverityHigh, tier: "HIGH", direction: "high", belowBound: false}
	default:
		return nil
	}
}

// alertTypeFor 告警类型映射
// 压力传感器按方向映射 low_pressure/high_pressure；其余类型一律 sensor_failure
// （flow/level 越界是否应有独立类型待产品确认，这里保持既有映射）
func alertTypeFor(sensorType string, belowBound bool) string {
	if sensorType == models.SensorTypePressure {
		if belowBound {
			return models.AlertTypeLowPressure
		}
		return models.AlertTypeHighPressure
	}
	return models.AlertTypeSensorFailure
}

// Evaluate 评估一条读数
// 返回 (alert, created, err)：
//   - 读数在正常区间或类型不支持：(nil, false, nil)
//   - 去重窗口内已有新鲜告警：(existing, false, nil)，不发事件
//   - 新建告警：(alert, true, nil)，发布 new_alert 事件
func (e *Evaluator) Evaluate(ctx context.Context, sensor models.Sensor, reading *models.SensorReading) (*models.Alert, bool, error) {
	if sensor.SensorType == "" || reading == nil {
		return nil, false, nil
	}

	bounds, ok := e.config.Thresholds[sensor.SensorType]
	if !ok {
		// 未配置阈值的传感器类型不评估，不算错误
		e.logger.Debug("No thresholds for sensor type, skipping",
			zap.String("sensor_type", sensor.SensorType),
			zap.Int("sensor_id", sensor.SensorID),
		)
		return nil, false, nil
	}

	result := classify(bounds, reading.Value)
	if result == nil {
		return nil, false, nil
	}

	alertType := alertTypeFor(sensor.SensorType, result.belowBound)

	// 同 (sensor, type) 的查重和插入必须串行，否则并发评估会双插
	unlock := e.locks.lock(fmt.Sprintf("%d:%s", sensor.SensorID, alertType))
	defer unlock()

	dedupWindow := time.Duration(e.config.Alert.DedupWindowMinutes) * time.Minute
	since := e.now().Add(-dedupWindow)

	existing, err := e.alerts.FindFreshAlert(ctx, sensor.SensorID, alertType, since, models.FreshAlertStatuses())
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for existing alert: %w", err)
	}
	if existing != nil {
		// 窗口内重复越界折叠进已有告警，不发新事件
		return existing, false, nil
	}

	alert := e.buildAlert(sensor, reading, alertType, result)
	if err := e.alerts.CreateAlert(ctx, alert); err != nil {
		// 插入失败可能是并发评估已先插入（如唯一约束冲突），重查一次即可恢复
		if recovered, findErr := e.alerts.FindFreshAlert(ctx, sensor.SensorID, alertType, since, models.FreshAlertStatuses()); findErr == nil && recovered != nil {
			return recovered, false, nil
		}
		return nil, false, fmt.Errorf("failed to create alert: %w", err)
	}

	e.logger.Info("Alert created",
		zap.Int("alert_id", alert.ID),
		zap.String("type", alert.Type),
		zap.String("severity", alert.Severity),
		zap.Int("sensor_id", sensor.SensorID),
		zap.Float64("value", reading.Value),
	)

	e.sink.Publish(ctx, models.EventNewAlert, models.NewAlertEvent{
		ID:        alert.ID,
		Type:      alert.Type,
		Severity:  alert.Severity,
		Title:     alert.Title,
		SensorID:  alert.SensorID,
		DMAID:     alert.DMAID,
		CreatedAt: alert.CreatedAt,
	})

	return alert, true, nil
}

// buildAlert 构建新告警（open 状态，带传感器/分区关联和位置）
func (e *Evaluator) buildAlert(sensor models.Sensor, reading *models.SensorReading, alertType string, result *classification) *models.Alert {
	sensorID := sensor.SensorID
	title := fmt.Sprintf("%s: %s sensor %d reading %s (%.2f)",
		result.tier,
		strings.ToUpper(sensor.SensorType),
		sensor.SensorID,
		result.direction,
		reading.Value,
	)
	description := fmt.Sprintf("%s sensor reading: %.2f", sensor.SensorType, reading.Value)

	location := "Unknown"
	if sensor.DMAID != nil {
		location = fmt.Sprintf("DMA %d", *sensor.DMAID)
	}

	return &models.Alert{
		Type:        alertType,
		Severity:    result.severity,
		SensorID:    &sensorID,
		DMAID:       sensor.DMAID,
		Title:       title,
		Description: &description,
		Location:    &location,
		Latitude:    sensor.Latitude,
		Longitude:   sensor.Longitude,
		Status:      models.AlertStatusOpen,
	}
}

// CheckAllSensors 对所有 active 传感器的最新读数做一轮评估
// 单个传感器失败只记日志不中断；返回本轮新建的告警
func (e *Evaluator) CheckAllSensors(ctx context.Context) ([]*models.Alert, error) {
	sensors, err := e.sensors.ListActiveSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sensors: %w", err)
	}

	var created []*models.Alert
	for _, sensor := range sensors {
		reading, err := e.readings.LatestReading(ctx, sensor.SensorID)
		if err != nil {
			e.logger.Error("Failed to get latest reading",
				zap.Int("sensor_id", sensor.SensorID),
				zap.Error(err),
			)
			continue
		}
		if reading == nil {
			continue
		}

		alert, isNew, err := e.Evaluate(ctx, sensor, reading)
		if err != nil {
			e.logger.Error("Failed to evaluate sensor reading",
				zap.Int("sensor_id", sensor.SensorID),
				zap.Error(err),
			)
			continue
		}
		if isNew {
			created = append(created, alert)
		}
	}

	return created, nil
}
