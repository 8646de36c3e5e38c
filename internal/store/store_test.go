package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"field-metrics-backend/internal/extract"
	"field-metrics-backend/internal/metrics"
	"field-metrics-backend/internal/pipeline"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface.
func (a Any) Match(v driver.Value) bool {
	return true
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSnapshot() *pipeline.Snapshot {
	return &pipeline.Snapshot{
		Source:      "export.xlsx",
		CreatedAt:   time.Date(2024, 6, 22, 10, 0, 0, 0, time.UTC),
		Granularity: metrics.GranularityDay,
		Events:      make([]extract.EquipmentEvent, 3),
		Metrics: []metrics.MetricsRow{
			{EquipmentID: "FT1", Period: "2024-06-15", PeriodStart: day(2024, 6, 15), Category: "fishing", UtilizationRatio: 0.5, EventCount: 2},
			{EquipmentID: "FT1", Period: "2024-06-16", PeriodStart: day(2024, 6, 16), Category: "fishing", UtilizationRatio: 0.25, EventCount: 1},
			{EquipmentID: "FT2", Period: "2024-06-15", PeriodStart: day(2024, 6, 15), Category: "milling", UtilizationRatio: 0.75, EventCount: 3},
		},
		Quarantined: []extract.QuarantinedRow{
			{Row: 4, Cells: []string{"", "2024-06-15", "2024-06-16", "operating"}, Reason: extract.ReasonMissingEquipmentID},
		},
		RowCount: 5,
	}
}

func TestSessionStorePublish(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewSessionStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "upload_records"`)).
		WithArgs("export.xlsx", 5, 3, 1, 3, 0, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	record, err := s.Publish(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, 1, record.QuarantinedCount)
	assert.InDelta(t, 0.2, record.QuarantineRatio(), 0.001)

	require.NotNil(t, s.Snapshot())
	assert.Equal(t, "export.xlsx", s.Snapshot().Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStorePublishFailureKeepsOldSnapshot(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewSessionStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "upload_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()
	_, err := s.Publish(context.Background(), testSnapshot())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "upload_records"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	next := testSnapshot()
	next.Source = "broken.xlsx"
	_, err = s.Publish(context.Background(), next)
	assert.Error(t, err)
	assert.Equal(t, "export.xlsx", s.Snapshot().Source, "a failed publish must not replace the snapshot")
}

func TestSessionStoreQueriesBeforeFirstPublish(t *testing.T) {
	s := NewSessionStore(nil)

	assert.Nil(t, s.Snapshot())
	assert.Empty(t, s.MetricsFor(MetricsFilter{}))
	assert.Empty(t, s.QuarantineReport())
	assert.Empty(t, s.Warnings())

	summary := s.Summary(time.Time{}, time.Time{})
	assert.Nil(t, summary.TopUtilized)
	assert.Nil(t, summary.LeastUtilized)
	assert.Zero(t, summary.TotalEvents)
}

func TestSessionStoreMetricsFor(t *testing.T) {
	s := &sessionStore{snap: testSnapshot()}

	testCases := []struct {
		name     string
		filter   MetricsFilter
		expected int
	}{
		{"No filter", MetricsFilter{}, 3},
		{"By equipment", MetricsFilter{EquipmentID: "FT1"}, 2},
		{"By category", MetricsFilter{Category: "milling"}, 1},
		{"By period range", MetricsFilter{From: day(2024, 6, 16), To: day(2024, 6, 17)}, 1},
		{"Range excludes upper bound", MetricsFilter{From: day(2024, 6, 15), To: day(2024, 6, 16)}, 2},
		{"Unknown equipment yields empty, not error", MetricsFilter{EquipmentID: "FT99"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows := s.MetricsFor(tc.filter)
			assert.Len(t, rows, tc.expected)
		})
	}
}

func TestSessionStoreSummary(t *testing.T) {
	s := &sessionStore{snap: testSnapshot()}

	summary := s.Summary(time.Time{}, time.Time{})

	require.NotNil(t, summary.TopUtilized)
	assert.Equal(t, "FT2", summary.TopUtilized.EquipmentID)
	assert.InDelta(t, 0.75, summary.TopUtilized.UtilizationRatio, 0.001)

	require.NotNil(t, summary.LeastUtilized)
	assert.Equal(t, "FT1", summary.LeastUtilized.EquipmentID)
	assert.InDelta(t, 0.375, summary.LeastUtilized.UtilizationRatio, 0.001)

	assert.Equal(t, 6, summary.TotalEvents)
}
