package service

import (
	"context"
	"fmt"

	"aquawatch-monitor/internal/broadcast"
	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// AlertStatusStore 状态流转所需的告警存储抽象（repository.AlertRepository 实现）
type AlertStatusStore interface {
	GetAlert(ctx context.Context, id int) (*models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) error
	UpdateAlertStatus(ctx context.Context, id int, status string, actor *int) (*models.Alert, error)
}

// AlertStatusService 告警生命周期服务
// 供外部 CRUD 层调用：校验状态机、补时间戳、广播 alert_updated / alert_assigned
// 评估器只创建 open 告警，所有状态变更都走这里
type AlertStatusService struct {
	alerts AlertStatusStore
	sink   broadcast.Sink
	logger *zap.Logger
}

// NewAlertStatusService 创建告警生命周期服务
func NewAlertStatusService(alerts AlertStatusStore, sink broadcast.Sink, logger *zap.Logger) *AlertStatusService {
	return &AlertStatusService{
		alerts: alerts,
		sink:   sink,
		logger: logger,
	}
}

// UpdateStatus 执行一次状态流转
// acknowledged 需要 actor；每次成功流转都会广播 alert_updated
func (s *AlertStatusService) UpdateStatus(ctx context.Context, id int, status string, actor *int) (*models.Alert, error) {
	if !models.ValidAlertStatus(status) {
		return nil, fmt.Errorf("invalid alert status: %s", status)
	}

	current, err := s.alerts.GetAlert(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("alert not found: id=%d", id)
	}

	if !models.CanTransitionAlertStatus(current.Status, status) {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", current.Status, status)
	}
	if status == models.AlertStatusAcknowledged && actor == nil {
		return nil, fmt.Errorf("acknowledger is required")
	}

	updated, err := s.alerts.UpdateAlertStatus(ctx, id, status, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert status: %w", err)
	}

	s.logger.Info("Alert status updated",
		zap.Int("alert_id", id),
		zap.String("from", current.Status),
		zap.String("to", status),
	)

	s.sink.Publish(ctx, models.EventAlertUpdated, models.AlertUpdatedEvent{
		ID:        updated.ID,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	})

	return updated, nil
}

// Acknowledge 确认告警
func (s *AlertStatusService) Acknowledge(ctx context.Context, id, actor int) (*models.Alert, error) {
	return s.UpdateStatus(ctx, id, models.AlertStatusAcknowledged, &actor)
}

// Resolve 解决告警
func (s *AlertStatusService) Resolve(ctx context.Context, id int) (*models.Alert, error) {
	return s.UpdateStatus(ctx, id, models.AlertStatusResolved, nil)
}

// Assign 将告警指派给工程师
// 告警转为 acknowledged（指派人作为确认人），并广播 alert_assigned；工单创建由外部任务系统负责
func (s *AlertStatusService) Assign(ctx context.Context, alertID, engineerID, assignedBy int) (*models.Alert, error) {
	current, err := s.alerts.GetAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("alert not found: id=%d", alertID)
	}

	alert := current
	if current.Status == models.AlertStatusOpen {
		alert, err = s.UpdateStatus(ctx, alertID, models.AlertStatusAcknowledged, &assignedBy)
		if err != nil {
			return nil, err
		}
	}

	s.sink.Publish(ctx, models.EventAlertAssigned, models.AlertAssignedEvent{
		AlertID:    alertID,
		EngineerID: engineerID,
	})

	s.logger.Info("Alert assigned",
		zap.Int("alert_id", alertID),
		zap.Int("engineer_id", engineerID),
	)

	return alert, nil
}

// CreateAlertInput 手动创建告警的入参
type CreateAlertInput struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	SensorID    *int     `json:"sensorId"`
	DMAID       *int     `json:"dmaId"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// CreateManual 操作员手动创建告警（open 状态），广播 new_alert
func (s *AlertStatusService) CreateManual(ctx context.Context, input CreateAlertInput) (*models.Alert, error) {
	if input.Type == "" || input.Title == "" {
		return nil, fmt.Errorf("type and title are required")
	}

	severity := input.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}

	alert := &models.Alert{
		Type:        input.Type,
		Severity:    severity,
		SensorID:    input.SensorID,
		DMAID:       input.DMAID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      models.AlertStatusOpen,
	}

	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.sink.Publish(ctx, models.EventNewAlert, models.NewAlertEvent{
		ID:        alert.ID,
		Type:      alert.Type,
		Severity:  alert.Severity,
		Title:     alert.Title,
		SensorID:  alert.SensorID,
		DMAID:     alert.DMAID,
		CreatedAt: alert.CreatedAt,
	})

	return alert, nil
}
