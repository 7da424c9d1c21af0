package models

import "time"

// TelegramUser is a chat that has talked to the bot. StudentID is set once
// the chat is linked by contact card or link code.
type TelegramUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TelegramUserID int64      `gorm:"uniqueIndex" json:"telegram_user_id"`
	ChatID         int64      `json:"chat_id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	Phone          string     `json:"phone"`
	StudentID      *uint      `gorm:"index" json:"student_id,omitempty"`
	LinkedAt       *time.Time `json:"linked_at,omitempty"`
	Deliverable    bool       `gorm:"default:true" json:"deliverable"` // false after the user blocks the bot
}

func (t TelegramUser) Linked() bool { return t.StudentID != nil }

// LinkCode is a one-time 6-digit code a student sends to the bot.
type LinkCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Code      string     `gorm:"uniqueIndex;size:6" json:"code"`
	StudentID uint       `gorm:"index" json:"student_id"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
