package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatch сохраняет пакет вопросов темы и увеличивает ее question_count в одной транзакции
func (r *QuestionRepo) CreateBatch(ctx context.Context, topicID uint, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&questions, 100).Error; err != nil {
			return translateError(err, "question")
		}
		return adjustQuestionCount(tx, topicID, len(questions))
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translateError(err, "question")
	}
	return &question, nil
}

// GetByTopicID возвращает все вопросы темы
func (r *QuestionRepo) GetByTopicID(ctx context.Context, topicID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).Where("topic_id = ?", topicID).Order("id").Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByIDs возвращает вопросы по списку ID
func (r *QuestionRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Question, error) {
	var questions []entity.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// GetRandomByTopic возвращает до limit случайных вопросов темы.
// RANDOM() есть и в Postgres, и в sqlite.
func (r *QuestionRepo) GetRandomByTopic(ctx context.Context, topicID uint, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

// Delete удаляет вопрос темы и уменьшает ее question_count в одной транзакции.
// Вопрос другой темы считается не найденным.
func (r *QuestionRepo) Delete(ctx context.Context, topicID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("topic_id = ?", topicID).Delete(&entity.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return translateError(gorm.ErrRecordNotFound, "question")
		}
		return adjustQuestionCount(tx, topicID, -1)
	})
}

// Count возвращает общее количество вопросов
func (r *QuestionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Question{}).Count(&count).Error
	return count, err
}
