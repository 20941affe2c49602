package domain

import "time"

// Conversation is a thread of messages. There is no direct
// Conversation->User foreign key: a conversation is associated with
// users only through the messages posted into it.
type Conversation struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	IsActive bool  `gorm:"column:is_active;not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Conversation) TableName() string { return "chat_conversation" }
