package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// ReadingRepository 传感器读数仓库（只追加）
type ReadingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingRepository 创建读数仓库
func NewReadingRepository(db *sql.DB, logger *zap.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:     db,
		logger: logger,
	}
}

// CreateReading 写入一条读数
func (r *ReadingRepository) CreateReading(ctx context.Context, sensorID int, value float64, recordedAt time.Time) (*models.SensorReading, error) {
	query := `
		INSERT INTO sensor_readings (sensor_id, value, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING reading_id
	`

	reading := &models.SensorReading{
		SensorID:   sensorID,
		Value:      value,
		RecordedAt: recordedAt,
	}

	err := r.db.QueryRowContext(ctx, query, sensorID, value, recordedAt).Scan(&reading.ReadingID)
	if err != nil {
		return nil, fmt.Errorf("failed to create reading: %w", err)
	}

	return reading, nil
}

// LatestReading 获取传感器的最新读数（按 recorded_at 降序取第一条），无读数时返回 (nil, nil)
func (r *ReadingRepository) LatestReading(ctx context.Context, sensorID int) (*models.SensorReading, error) {
	query := `
		SELECT
			reading_id,
			sensor_id,
			value,
			recorded_at
		FROM sensor_readings
		WHERE sensor_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var reading models.SensorReading
	err := r.db.QueryRowContext(ctx, query, sensorID).Scan(
		&reading.ReadingID,
		&reading.SensorID,
		&reading.Value,
		&reading.RecordedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	return &reading, nil
}

// ReadingsInRange 按时间段查询读数（start/end 可空，limit 必填）
func (r *ReadingRepository) ReadingsInRange(ctx context.Context, sensorID int, start, end *time.Time, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	query := `
		SELECT
			reading_id,
			sensor_id,
			value,
			recorded_at
		FROM sensor_readings
		WHERE sensor_id = $1
	`
	args := []interface{}{sensorID}
	argIdx := 2

	if start != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", argIdx)
		args = append(args, *start)
		argIdx++
	}
	if end != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", argIdx)
		args = append(args, *end)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY recorded_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var reading models.SensorReading
		if err := rows.Scan(
			&reading.ReadingID,
			&reading.SensorID,
			&reading.Value,
			&reading.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}
