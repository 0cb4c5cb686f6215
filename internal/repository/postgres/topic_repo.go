package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// TopicRepo реализует repository.TopicRepository
type TopicRepo struct {
	db *gorm.DB
}

// NewTopicRepo создает новый репозиторий тем
func NewTopicRepo(db *gorm.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// Create создает новую тему
func (r *TopicRepo) Create(ctx context.Context, topic *entity.Topic) error {
	return translateError(r.db.WithContext(ctx).Create(topic).Error, "topic")
}

// GetByID возвращает тему по ID
func (r *TopicRepo) GetByID(ctx context.Context, id uint) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, translateError(err, "topic")
	}
	return &topic, nil
}

// Update точечно обновляет название и описание темы (без перетирания question_count)
func (r *TopicRepo) Update(ctx context.Context, topic *entity.Topic) error {
	result := r.db.WithContext(ctx).Model(&entity.Topic{}).
		Where("id = ?", topic.ID).
		Updates(map[string]interface{}{
			"name":        topic.Name,
			"description": topic.Description,
		})
	if result.Error != nil {
		return translateError(result.Error, "topic")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "topic")
	}
	return nil
}

// Delete удаляет тему; вопросы удаляются каскадно внешним ключом
func (r *TopicRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Topic{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "topic")
	}
	return nil
}

// List возвращает список тем с фильтрами и total count
func (r *TopicRepo) List(ctx context.Context, filters repository.TopicFilters, limit, offset int) ([]entity.Topic, int64, error) {
	var topics []entity.Topic
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Topic{})
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// adjustQuestionCount меняет question_count на delta через gorm.Expr внутри транзакции tx
func adjustQuestionCount(tx *gorm.DB, topicID uint, delta int) error {
	result := tx.Model(&entity.Topic{}).
		Where("id = ?", topicID).
		Update("question_count", gorm.Expr("question_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "topic")
	}
	return nil
}

// Count возвращает общее количество тем
func (r *TopicRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Topic{}).Count(&count).Error
	return count, err
}
