package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func TestInsertIfAbsent_Inserts(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRecommendationRepository(gdb)

	rec := entities.NewRecommendation(uuid.New(), "call the supplier before Friday", nil)

	mock.ExpectExec("INSERT INTO todo_ai_recommendations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertIfAbsent(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfAbsent_NoopOnConflict(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRecommendationRepository(gdb)

	rec := entities.NewRecommendation(uuid.New(), "duplicate attempt", nil)

	// ON CONFLICT (todo_id) DO NOTHING affects zero rows
	mock.ExpectExec("INSERT INTO todo_ai_recommendations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfAbsent_NilRecommendation(t *testing.T) {
	gdb, _ := newMockDB(t)
	repo := NewRecommendationRepository(gdb)

	_, err := repo.InsertIfAbsent(context.Background(), nil)
	assert.Error(t, err)
}

func TestCountByMeeting(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRecommendationRepository(gdb)

	meetingID := uuid.New()
	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(meetingID).
		WillReturnRows(rows)

	count, err := repo.CountByMeeting(context.Background(), meetingID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
