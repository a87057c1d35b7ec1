package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// AlertEventRepository アラートイベントの永続化（alert_events テーブル）
// エンジン本体はメモリ上のリストだけで動作し、この永続化は任意。
type AlertEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertEventRepository リポジトリを生成する
func NewAlertEventRepository(db *sql.DB, logger *zap.Logger) *AlertEventRepository {
	return &AlertEventRepository{
		db:     db,
		logger: logger,
	}
}

// AlertEventFilters アラートイベントの検索条件
type AlertEventFilters struct {
	StartTime    *time.Time // triggered_at >= StartTime
	EndTime      *time.Time // triggered_at <= EndTime
	PointID      *string
	Severity     *string
	Severities   []string // IN 検索
	Acknowledged *bool
	Limit        int // 0 は無制限
}

// CreateAlertEvent アラートイベントを登録する
func (r *AlertEventRepository) CreateAlertEvent(ctx context.Context, alert models.Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("alert id is required")
	}

	triggeredAt, err := time.Parse(time.RFC3339, alert.Timestamp)
	if err != nil {
		triggeredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alert_events (
			alert_id, point_id, entity_name, message, severity,
			triggered_at, acknowledged, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = r.db.ExecContext(ctx, query,
		alert.ID, alert.PointID, alert.EntityName, alert.Message,
		alert.Severity, triggeredAt, alert.Acknowledged,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}

	r.logger.Debug("Created alert event",
		zap.String("alert_id", alert.ID),
		zap.String("severity", alert.Severity),
	)
	return nil
}

// GetAlertEvent alert_id で1件取得する
func (r *AlertEventRepository) GetAlertEvent(ctx context.Context, alertID string) (*models.Alert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alert_id is required")
	}

	query := `
		SELECT alert_id, point_id, entity_name, message, severity, triggered_at, acknowledged
		FROM alert_events
		WHERE alert_id = $1
	`

	var alert models.Alert
	var triggeredAt time.Time
	err := r.db.QueryRowContext(ctx, query, alertID).Scan(
		&alert.ID, &alert.PointID, &alert.EntityName, &alert.Message,
		&alert.Severity, &triggeredAt, &alert.Acknowledged,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert event not found: %s", alertID)
		}
		return nil, fmt.Errorf("failed to get alert event: %w", err)
	}
	alert.Timestamp = triggeredAt.UTC().Format(time.RFC3339)

	return &alert, nil
}

// ListAlertEvents 条件に一致するアラートイベントを新しい順で返す
func (r *AlertEventRepository) ListAlertEvents(ctx context.Context, filters AlertEventFilters) ([]models.Alert, error) {
	var conditions []string
	var args []any
	argIndex := 1

	addCondition := func(clause string, value any) {
		conditions = append(conditions, fmt.Sprintf(clause, argIndex))
		args = append(args, value)
		argIndex++
	}

	if filters.StartTime != nil {
		addCondition("triggered_at >= $%d", *filters.StartTime)
	}
	if filters.EndTime != nil {
		addCondition("triggered_at <= $%d", *filters.EndTime)
	}
	if filters.PointID != nil {
		addCondition("point_id = $%d", *filters.PointID)
	}
	if filters.Severity != nil {
		addCondition("severity = $%d", *filters.Severity)
	}
	if len(filters.Severities) > 0 {
		placeholders := make([]string, len(filters.Severities))
		for i, severity := range filters.Severities {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, severity)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filters.Acknowledged != nil {
		addCondition("acknowledged = $%d", *filters.Acknowledged)
	}

	query := `
		SELECT alert_id, point_id, entity_name, message, severity, triggered_at, acknowledged
		FROM alert_events
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY triggered_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert events: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		var triggeredAt time.Time
		if err := rows.Scan(
			&alert.ID, &alert.PointID, &alert.EntityName, &alert.Message,
			&alert.Severity, &triggeredAt, &alert.Acknowledged,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		alert.Timestamp = triggeredAt.UTC().Format(time.RFC3339)
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return alerts, nil
}

// MarkAcknowledged アラートイベントを確認済みにする
// 存在しない alert_id は no-op（エンジンの Acknowledge と同じ扱い）。
func (r *AlertEventRepository) MarkAcknowledged(ctx context.Context, alertID string) error {
	query := `UPDATE alert_events SET acknowledged = true WHERE alert_id = $1`

	result, err := r.db.ExecContext(ctx, query, alertID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert event: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		r.logger.Debug("Acknowledge on unknown alert event",
			zap.String("alert_id", alertID),
		)
	}
	return nil
}

// DeleteAlertEvent アラートイベントを削除する
// 存在しない alert_id は no-op。
func (r *AlertEventRepository) DeleteAlertEvent(ctx context.Context, alertID string) error {
	query := `DELETE FROM alert_events WHERE alert_id = $1`

	if _, err := r.db.ExecContext(ctx, query, alertID); err != nil {
		return fmt.Errorf("failed to delete alert event: %w", err)
	}
	return nil
}
