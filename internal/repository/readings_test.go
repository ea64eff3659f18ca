package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var readingColumns = []string{"reading_id", "sensor_id", "value", "recorded_at"}

func TestCreateReading(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())
	recordedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO sensor_readings(.|\n)+RETURNING reading_id").
		WithArgs(7, 43.5, recordedAt).
		WillReturnRows(sqlmock.NewRows([]string{"reading_id"}).AddRow(101))

	reading, err := repo.CreateReading(context.Background(), 7, 43.5, recordedAt)
	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, int64(101), reading.ReadingID)
	assert.Equal(t, 7, reading.SensorID)
	assert.Equal(t, 43.5, reading.Value)
	assert.Equal(t, recordedAt, reading.RecordedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReading_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())

	mock.ExpectQuery("INSERT INTO sensor_readings").
		WillReturnError(errors.New("deadlock detected"))

	reading, err := repo.CreateReading(context.Background(), 7, 43.5, time.Now())
	require.Error(t, err)
	assert.Nil(t, reading)
	assert.Contains(t, err.Error(), "failed to create reading")
}

func TestLatestReading(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())
	recordedAt := time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC)

	rows := sqlmock.NewRows(readingColumns).
		AddRow(int64(101), 7, 43.5, recordedAt)

	mock.ExpectQuery("SELECT(.|\n)+FROM sensor_readings(.|\n)+ORDER BY recorded_at DESC(.|\n)+LIMIT 1").
		WithArgs(7).
		WillReturnRows(rows)

	reading, err := repo.LatestReading(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, int64(101), reading.ReadingID)
	assert.Equal(t, 43.5, reading.Value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReading_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT(.|\n)+FROM sensor_readings").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(readingColumns))

	// 无读数不是错误
	reading, err := repo.LatestReading(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestReadingsInRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(readingColumns).
		AddRow(int64(102), 7, 44.1, end.Add(-time.Hour)).
		AddRow(int64(101), 7, 43.5, start.Add(time.Hour))

	mock.ExpectQuery("SELECT(.|\n)+FROM sensor_readings(.|\n)+AND recorded_at >= \\$2 AND recorded_at <= \\$3 ORDER BY recorded_at DESC LIMIT \\$4").
		WithArgs(7, start, end, 100).
		WillReturnRows(rows)

	readings, err := repo.ReadingsInRange(context.Background(), 7, &start, &end, 100)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, int64(102), readings[0].ReadingID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadingsInRange_NoBounds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT(.|\n)+FROM sensor_readings(.|\n)+WHERE sensor_id = \\$1(.|\n)+ORDER BY recorded_at DESC LIMIT \\$2").
		WithArgs(7, 50).
		WillReturnRows(sqlmock.NewRows(readingColumns))

	readings, err := repo.ReadingsInRange(context.Background(), 7, nil, nil, 50)
	require.NoError(t, err)
	assert.Empty(t, readings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadingsInRange_InvalidLimit(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingRepository(db, zap.NewNop())

	_, err = repo.ReadingsInRange(context.Background(), 7, nil, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit must be positive")
}
