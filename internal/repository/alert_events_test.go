package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"smart-building-os/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockAlertEventsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlertEventRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewAlertEventRepository(db, logger)

	return db, mock, repo
}

func sampleAlert() models.Alert {
	return models.Alert{
		ID:           uuid.New().String(),
		PointID:      "s1",
		EntityName:   "Temperature Sensor",
		Message:      "High value detected: 31 (threshold: 28)",
		Severity:     models.SeverityHigh,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Acknowledged: false,
	}
}

func TestCreateAlertEvent_Success(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	alert := sampleAlert()

	mock.ExpectExec(`INSERT INTO alert_events`).
		WithArgs(alert.ID, alert.PointID, alert.EntityName, alert.Message,
			alert.Severity, sqlmock.AnyArg(), alert.Acknowledged).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateAlertEvent(context.Background(), alert)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlertEvent_MissingID(t *testing.T) {
	db, _, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	err := repo.CreateAlertEvent(context.Background(), models.Alert{PointID: "s1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "alert id is required")
}

func TestGetAlertEvent_Success(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	alertID := uuid.New().String()
	triggeredAt := time.Now().UTC().Truncate(time.Second)

	rows := sqlmock.NewRows([]string{
		"alert_id", "point_id", "entity_name", "message", "severity", "triggered_at", "acknowledged",
	}).AddRow(
		alertID, "s1", "Temperature Sensor", "High value detected: 31 (threshold: 28)",
		"high", triggeredAt, false,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnRows(rows)

	alert, err := repo.GetAlertEvent(context.Background(), alertID)
	require.NoError(t, err)
	assert.Equal(t, alertID, alert.ID)
	assert.Equal(t, "s1", alert.PointID)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, triggeredAt.Format(time.RFC3339), alert.Timestamp)
	assert.False(t, alert.Acknowledged)
}

func TestGetAlertEvent_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	alertID := uuid.New().String()
	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAlertEvent(context.Background(), alertID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "alert event not found")
}

func TestListAlertEvents_NoFilters(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"alert_id", "point_id", "entity_name", "message", "severity", "triggered_at", "acknowledged",
	}).
		AddRow("a2", "s1", "Sensor", "msg2", "critical", time.Now(), false).
		AddRow("a1", "s1", "Sensor", "msg1", "medium", time.Now().Add(-time.Hour), true)

	mock.ExpectQuery(`SELECT(.|\n)*ORDER BY triggered_at DESC`).
		WillReturnRows(rows)

	alerts, err := repo.ListAlertEvents(context.Background(), AlertEventFilters{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "a2", alerts[0].ID)
	assert.Equal(t, "a1", alerts[1].ID)
}

func TestListAlertEvents_WithFilters(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	startTime := time.Now().Add(-24 * time.Hour)
	pointID := "s1"
	acknowledged := false

	rows := sqlmock.NewRows([]string{
		"alert_id", "point_id", "entity_name", "message", "severity", "triggered_at", "acknowledged",
	}).AddRow("a1", "s1", "Sensor", "msg", "high", time.Now(), false)

	mock.ExpectQuery(`SELECT(.|\n)*WHERE(.|\n)*triggered_at >=(.|\n)*point_id =(.|\n)*severity IN(.|\n)*acknowledged =(.|\n)*LIMIT`).
		WithArgs(startTime, pointID, "high", "critical", acknowledged, 10).
		WillReturnRows(rows)

	alerts, err := repo.ListAlertEvents(context.Background(), AlertEventFilters{
		StartTime:    &startTime,
		PointID:      &pointID,
		Severities:   []string{"high", "critical"},
		Acknowledged: &acknowledged,
		Limit:        10,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a1", alerts[0].ID)
}

func TestMarkAcknowledged_Success(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	alertID := uuid.New().String()
	mock.ExpectExec(`UPDATE alert_events SET acknowledged = true`).
		WithArgs(alertID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkAcknowledged(context.Background(), alertID)
	assert.NoError(t, err)
}

func TestMarkAcknowledged_UnknownIDIsNoop(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE alert_events SET acknowledged = true`).
		WithArgs("no-such-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAcknowledged(context.Background(), "no-such-id")
	assert.NoError(t, err)
}

func TestDeleteAlertEvent(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	alertID := uuid.New().String()
	mock.ExpectExec(`DELETE FROM alert_events`).
		WithArgs(alertID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteAlertEvent(context.Background(), alertID)
	assert.NoError(t, err)
}
