package types

import (
	"time"
)

type ClipFeedback struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ClipID    int64     `gorm:"not null;index" json:"clip_id"`
	Accepted  bool      `gorm:"not null" json:"accepted"`
	UserID    *string   `gorm:"type:varchar(255)" json:"user_id,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ClipFeedback) TableName() string {
	return "clip_feedback"
}
