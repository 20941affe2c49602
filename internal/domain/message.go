package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted turn. Rows are append-only; prompt assembly
// depends on (sent_at, id) ascending matching insertion order.
type Message struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64  `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	UserID         int64  `gorm:"column:user_id;not null;index" json:"user_id"`
	Content        string `gorm:"column:content;type:text;not null" json:"content"`
	Role           string `gorm:"column:role;not null" json:"role"`

	SentAt time.Time `gorm:"column:sent_at;not null;autoCreateTime;index" json:"sent_at"`
}

func (Message) TableName() string { return "chat_message" }

// Turn is one role-tagged unit in a prompt sequence sent to the
// completion API.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
