package types

import (
	"time"
)

type TranscriptSegment struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SermonID  int64      `gorm:"not null;index" json:"sermon_id"`
	StartMS   int        `gorm:"column:start_ms;not null" json:"start_ms"`
	EndMS     int        `gorm:"column:end_ms;not null" json:"end_ms"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (TranscriptSegment) TableName() string {
	return "transcript_segments"
}
