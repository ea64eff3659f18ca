package models

import (
	"time"
)

// 广播事件名称（与外部 WebSocket 层约定一致）
const (
	EventSensorReading = "sensor_reading"
	EventNewAlert      = "new_alert"
	EventAlertUpdated  = "alert_updated"
	EventAlertAssigned = "alert_assigned"
)

// SensorReadingEvent sensor_reading 事件负载
type SensorReadingEvent struct {
	SensorID   int       `json:"sensorId"`
	SensorType string    `json:"sensorType"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recordedAt"`
}

// NewAlertEvent new_alert 事件负载
type NewAlertEvent struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	SensorID  *int      `json:"sensorId,omitempty"`
	DMAID     *int      `json:"dmaId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AlertUpdatedEvent alert_updated 事件负载
type AlertUpdatedEvent struct {
	ID        int       `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AlertAssignedEvent alert_assigned 事件负载
type AlertAssignedEvent struct {
	AlertID    int `json:"alertId"`
	EngineerID int `json:"engineerId"`
}
