package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"aquawatch-monitor/internal/models"

	"go.uber.org/zap"
)

// AlertRepository 告警仓库
type AlertRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertRepository 创建告警仓库
func NewAlertRepository(db *sql.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

const alertColumns = `
			id,
			type,
			severity,
			sensor_id,
			dma_id,
			title,
			description,
			location,
			latitude,
			longitude,
			status,
			acknowledged_by,
			acknowledged_at,
			resolved_at,
			created_at,
			updated_at`

// CreateAlert 写入新告警并回填 id/created_at/updated_at
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert.Type == "" {
		return fmt.Errorf("alert type is required")
	}
	if alert.Title == "" {
		return fmt.Errorf("alert title is required")
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusOpen
	}
	if alert.Severity == "" {
		alert.Severity = models.SeverityMedium
	}

	query := `
		INSERT INTO alerts (
			type, severity, sensor_id, dma_id, title, description,
			location, latitude, longitude, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		alert.Type,
		alert.Severity,
		alert.SensorID,
		alert.DMAID,
		alert.Title,
		alert.Description,
		alert.Location,
		alert.Latitude,
		alert.Longitude,
		alert.Status,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// GetAlert 根据 id 获取告警，不存在时返回 (nil, nil)
func (r *AlertRepository) GetAlert(ctx context.Context, id int) (*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

// FindFreshAlert 查找去重窗口内的"新鲜"告警
// 条件：同 sensor_id、同 type、created_at > since、状态在 statuses 集合内
// 未命中时返回 (nil, nil)
func (r *AlertRepository) FindFreshAlert(ctx context.Context, sensorID int, alertType string, since time.Time, statuses []string) (*models.Alert, error) {
	if alertType == "" {
		return nil, fmt.Errorf("alert type is required")
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("at least one status is required")
	}

	// 构建 status IN (...) 占位符
	placeholders := make([]string, 0, len(statuses))
	args := []interface{}{sensorID, alertType, since}
	for i, status := range statuses {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+4))
		args = append(args, status)
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE sensor_id = $1
		  AND type = $2
		  AND created_at > $3
		  AND status IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at DESC
		LIMIT 1
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find fresh alert: %w", err)
	}

	return alert, nil
}

// UpdateAlertStatus 更新告警状态并按目标状态补时间戳
// acknowledged 需要 actor 并写 acknowledged_by/acknowledged_at；resolved 写 resolved_at
func (r *AlertRepository) UpdateAlertStatus(ctx context.Context, id int, status string, actor *int) (*models.Alert, error) {
	if !models.ValidAlertStatus(status) {
		return nil, fmt.Errorf("invalid alert status: %s", status)
	}

	set := []string{"status = $2", "updated_at = NOW()"}
	args := []interface{}{id, status}
	argIdx := 3

	switch status {
	case models.AlertStatusAcknowledged:
		if actor == nil {
			return nil, fmt.Errorf("acknowledger is required for status %s", status)
		}
		set = append(set, fmt.Sprintf("acknowledged_by = $%d", argIdx), "acknowledged_at = NOW()")
		args = append(args, *actor)
		argIdx++
	case models.AlertStatusResolved:
		set = append(set, "resolved_at = NOW()")
	}

	query := `
		UPDATE alerts
		SET ` + strings.Join(set, ", ") + `
		WHERE id = $1
		RETURNING ` + alertColumns + `
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert not found: id=%d", id)
		}
		return nil, fmt.Errorf("failed to update alert status: %w", err)
	}

	return alert, nil
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var alert models.Alert
	var sensorID, dmaID, acknowledgedBy sql.NullInt64
	var description, location sql.NullString
	var latitude, longitude sql.NullFloat64
	var acknowledgedAt, resolvedAt sql.NullTime

	err := row.Scan(
		&alert.ID,
		&alert.Type,
		&alert.Severity,
		&sensorID,
		&dmaID,
		&alert.Title,
		&description,
		&location,
		&latitude,
		&longitude,
		&alert.Status,
		&acknowledgedBy,
		&acknowledgedAt,
		&resolvedAt,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// 处理可空字段
	if sensorID.Valid {
		v := int(sensorID.Int64)
		alert.SensorID = &v
	}
	if dmaID.Valid {
		v := int(dmaID.Int64)
		alert.DMAID = &v
	}
	if description.Valid {
		alert.Description = &description.String
	}
	if location.Valid {
		alert.Location = &location.String
	}
	if latitude.Valid {
		alert.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		alert.Longitude = &longitude.Float64
	}
	if acknowledgedBy.Valid {
		v := int(acknowledgedBy.Int64)
		alert.AcknowledgedBy = &v
	}
	if acknowledgedAt.Valid {
		alert.AcknowledgedAt = &acknowledgedAt.Time
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}

	return &alert, nil
}
