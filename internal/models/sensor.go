package models

// 传感器状态
const (
	SensorStatusActive      = "active"
	SensorStatusInactive    = "inactive"
	SensorStatusMaintenance = "maintenance"
	SensorStatusFaulty      = "faulty"
)

// 传感器类型
const (
	SensorTypePressure = "pressure"
	SensorTypeFlow     = "flow"
	SensorTypeLevel    = "level"
	SensorTypeQuality  = "quality"
)

// Sensor 传感器（对应 sensors 表，由外部注册中心维护，本服务只读）
type Sensor struct {
	SensorID   int      `json:"sensorId" db:"sensor_id"`
	SensorType string   `json:"sensorType" db:"sensor_type"` // pressure, flow, level, quality, ...
	DMAID      *int     `json:"dmaId,omitempty" db:"dma_id"` // 所属 DMA 分区（可空）
	PipelineID *int     `json:"pipelineId,omitempty" db:"pipeline_id"`
	Latitude   *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64 `json:"longitude,omitempty" db:"longitude"`
	Status     string   `json:"status" db:"status"` // active, inactive, maintenance, faulty
}

// IsActive 是否参与模拟和评估（仅 active 状态的传感器参与）
func (s *Sensor) IsActive() bool {
	return s.Status == SensorStatusActive
}
