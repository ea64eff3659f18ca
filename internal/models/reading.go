package models

import (
	"time"
)

// SensorReading 传感器读数（对应 sensor_readings 表，只追加不修改）
type SensorReading struct {
	ReadingID  int64     `json:"readingId" db:"reading_id"`
	SensorID   int       `json:"sensorId" db:"sensor_id"`
	Value      float64   `json:"value" db:"value"`
	RecordedAt time.Time `json:"recordedAt" db:"recorded_at"`
}
