package entity

import (
	"time"
)

// Topic представляет тему, к которой привязаны вопросы
type Topic struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description   string     `gorm:"size:500;not null;default:''" json:"description"`
	QuestionCount int        `gorm:"not null;default:0" json:"question_count"`
	Questions     []Question `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Topic) TableName() string {
	return "topics"
}

// HasQuestions сообщает, есть ли у темы вопросы
func (t *Topic) HasQuestions() bool {
	return t.QuestionCount > 0
}
