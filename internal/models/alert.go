package models

import (
	"time"
)

// 告警类型（闭集）
const (
	AlertTypeLeak          = "leak"
	AlertTypeLowPressure   = "low_pressure"
	AlertTypeHighPressure  = "high_pressure"
	AlertTypeSensorFailure = "sensor_failure"
	AlertTypeQualityIssue  = "quality_issue"
	AlertTypeOther         = "other"
)

// 告警级别（从低到高排序）
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// 告警状态
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusInProgress   = "in_progress"
	AlertStatusResolved     = "resolved"
	AlertStatusClosed       = "closed"
)

// Alert 告警（对应 alerts 表）
// 只追加，状态是唯一可变维度；状态流转由外部 CRUD 层通过 AlertStatusService 执行
type Alert struct {
	ID             int        `json:"id" db:"id"`
	Type           string     `json:"type" db:"type"`
	Severity       string     `json:"severity" db:"severity"`
	SensorID       *int       `json:"sensorId,omitempty" db:"sensor_id"`
	DMAID          *int       `json:"dmaId,omitempty" db:"dma_id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description,omitempty" db:"description"`
	Location       *string    `json:"location,omitempty" db:"location"`
	Latitude       *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64   `json:"longitude,omitempty" db:"longitude"`
	Status         string     `json:"status" db:"status"`
	AcknowledgedBy *int       `json:"acknowledgedBy,omitempty" db:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty" db:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// alertTransitions 状态机：open → acknowledged → in_progress → resolved → closed
// 另外允许 open 直接强制 resolved/closed（操作员强制关闭）
var alertTransitions = map[string][]string{
	AlertStatusOpen:         {AlertStatusAcknowledged, AlertStatusInProgress, AlertStatusResolved, AlertStatusClosed},
	AlertStatusAcknowledged: {AlertStatusInProgress, AlertStatusResolved, AlertStatusClosed},
	AlertStatusInProgress:   {AlertStatusResolved, AlertStatusClosed},
	AlertStatusResolved:     {AlertStatusClosed},
	AlertStatusClosed:       {},
}

// ValidAlertStatus 检查状态值是否合法
func ValidAlertStatus(status string) bool {
	_, ok := alertTransitions[status]
	return ok
}

// CanTransitionAlertStatus 检查 from → to 的状态流转是否允许
func CanTransitionAlertStatus(from, to string) bool {
	for _, next := range alertTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalAlertStatus resolved/closed 为终态
func IsTerminalAlertStatus(status string) bool {
	return status == AlertStatusResolved || status == AlertStatusClosed
}

// IsFreshAlertStatus 去重窗口内只认 open/acknowledged 的告警
func IsFreshAlertStatus(status string) bool {
	return status == AlertStatusOpen || status == AlertStatusAcknowledged
}

// FreshAlertStatuses 去重查询使用的状态集合
func FreshAlertStatuses() []string {
	return []string{AlertStatusOpen, AlertStatusAcknowledged}
}
