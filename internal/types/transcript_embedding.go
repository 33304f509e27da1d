package types

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// TranscriptEmbedding snapshots a segment's text together with its sentence
// embedding. SermonID is denormalized so a whole sermon's vectors can be
// swept in one statement.
type TranscriptEmbedding struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SermonID  int64           `gorm:"not null;index" json:"sermon_id"`
	SegmentID int64           `gorm:"not null;index" json:"segment_id"`
	Text      string          `gorm:"type:text;not null" json:"text"`
	Embedding pgvector.Vector `gorm:"type:vector(384)" json:"embedding"`
	CreatedAt time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

func (TranscriptEmbedding) TableName() string {
	return "transcript_embeddings"
}
