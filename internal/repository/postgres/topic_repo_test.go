package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func TestTopicRepo_GetByID_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "question_count"}).
		AddRow(3, "Go", "Язык Go", 12)
	mock.ExpectQuery(`SELECT \* FROM "topics" WHERE "topics"."id" = \$1`).WillReturnRows(rows)

	topic, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), topic.ID)
	assert.Equal(t, "Go", topic.Name)
	assert.Equal(t, 12, topic.QuestionCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "topics"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	topic, err := repo.GetByID(context.Background(), 99)
	assert.Nil(t, topic)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepo_Create_DuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	mock.ExpectQuery(`INSERT INTO "topics"`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &entity.Topic{Name: "Go"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepo_Create_OK(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	mock.ExpectQuery(`INSERT INTO "topics"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	topic := &entity.Topic{Name: "SQL", Description: "Запросы"}
	require.NoError(t, repo.Create(context.Background(), topic))
	assert.Equal(t, uint(5), topic.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepo_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	mock.ExpectExec(`UPDATE "topics" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &entity.Topic{ID: 1, Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepo_List_WithSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepo(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "topics" WHERE .*LOWER\(name\) LIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "topics" WHERE .*LOWER\(name\) LIKE .* ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Golang"))

	topics, total, err := repo.List(context.Background(), repository.TopicFilters{Search: "go"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, topics, 1)
	assert.Equal(t, "Golang", topics[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
