package websocket

import "time"

// Типы событий ленты изменений контента
const (
	TOPIC_CREATED    = "TOPIC_CREATED"
	TOPIC_UPDATED    = "TOPIC_UPDATED"
	TOPIC_DELETED    = "TOPIC_DELETED"
	QUESTIONS_ADDED  = "QUESTIONS_ADDED"
	QUESTION_DELETED = "QUESTION_DELETED"
)

// ClusterMessage - конверт события между экземплярами
type ClusterMessage struct {
	// InstanceID отправителя: свои сообщения из канала пропускаются
	InstanceID string    `json:"instance_id"`
	Payload    []byte    `json:"payload"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContentEvent - событие ленты, которое получает клиент
type ContentEvent struct {
	Type       string    `json:"type"`
	TopicID    uint      `json:"topic_id"`
	QuestionID uint      `json:"question_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
