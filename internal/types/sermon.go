package types

import (
	"time"
)

type SermonStatus string

const (
	SermonStatusPending     SermonStatus = "pending"
	SermonStatusUploaded    SermonStatus = "uploaded"
	SermonStatusProcessing  SermonStatus = "processing"
	SermonStatusTranscribed SermonStatus = "transcribed"
	SermonStatusSuggested   SermonStatus = "suggested"
	SermonStatusEmbedded    SermonStatus = "embedded"
	SermonStatusError       SermonStatus = "error"
)

type Sermon struct {
	ID           int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        *string      `gorm:"type:varchar(255)" json:"title,omitempty"`
	Preacher     *string      `gorm:"type:varchar(255)" json:"preacher,omitempty"`
	SourceURL    *string      `gorm:"type:varchar(1024);column:source_url" json:"source_url,omitempty"`
	DurationSec  *float64     `gorm:"column:duration_sec" json:"duration_sec,omitempty"`
	Progress     int          `gorm:"not null;default:0" json:"progress"`
	Status       SermonStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	ErrorMessage *string      `gorm:"type:text;column:error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    *time.Time   `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sermon) TableName() string {
	return "sermons"
}
