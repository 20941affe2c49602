package domain

import "time"

// User is a chat participant. Exactly one of {explicit id, phone} is
// used to look a user up on the inbound path; email lookup exists as an
// alternate path only.
type User struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username *string `gorm:"column:username" json:"username,omitempty"`
	Email    *string `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	Phone    *string `gorm:"column:phone;uniqueIndex" json:"phone,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "chat_user" }
