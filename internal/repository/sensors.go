package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// SensorRepository 传感器仓库（传感器由外部注册中心维护，本服务只读）
type SensorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSensorRepository 创建传感器仓库
func NewSensorRepository(db *sql.DB, logger *zap.Logger) *SensorRepository {
	return &SensorRepository{
		db:     db,
		logger: logger,
	}
}

// ListActiveSensors 获取所有 active 状态的传感器
func (r *SensorRepository) ListActiveSensors(ctx context.Context) ([]models.Sensor, error) {
	query := `
		SELECT
			sensor_id,
			sensor_type,
			dma_id,
			pipeline_id,
			latitude,
			longitude,
			status
		FROM sensors
		WHERE status = $1
		ORDER BY sensor_id
	`

	rows, err := r.db.QueryContext(ctx, query, models.SensorStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sensors: %w", err)
	}
	defer rows.Close()

	var sensors []models.Sensor
	for rows.Next() {
		sensor, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, *sensor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}

	return sensors, nil
}

// GetSensor 根据 sensor_id 获取传感器，不存在时返回 (nil, nil)
func (r *SensorRepository) GetSensor(ctx context.Context, sensorID int) (*models.Sensor, error) {
	query := `
		SELECT
			sensor_id,
			sensor_type,
			dma_id,
			pipeline_id,
			latitude,
			longitude,
			status
		FROM sensors
		WHERE sensor_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, sensorID)
	sensor, err := scanSensor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}

	return sensor, nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSensor(row rowScanner) (*models.Sensor, error) {
	var sensor models.Sensor
	var sensorType, status sql.NullString
	var dmaID, pipelineID sql.NullInt64
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&sensor.SensorID,
		&sensorType,
		&dmaID,
		&pipelineID,
		&latitude,
		&longitude,
		&status,
	)
	if err != nil {
		return nil, err
	}

	// 处理可空字段
	sensor.SensorType = sensorType.String
	sensor.Status = status.String
	if dmaID.Valid {
		v := int(dmaID.Int64)
		sensor.DMAID = &v
	}
	if pipelineID.Valid {
		v := int(pipelineID.Int64)
		sensor.PipelineID = &v
	}
	if latitude.Valid {
		sensor.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		sensor.Longitude = &longitude.Float64
	}

	return &sensor, nil
}
