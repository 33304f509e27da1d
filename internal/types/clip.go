package types

import (
	"time"

	"gorm.io/datatypes"
)

type ClipStatus string

const (
	ClipStatusPending    ClipStatus = "pending"
	ClipStatusProcessing ClipStatus = "processing"
	ClipStatusDone       ClipStatus = "done"
	ClipStatusError      ClipStatus = "error"
)

type ClipSource string

const (
	ClipSourceManual ClipSource = "manual"
	ClipSourceAuto   ClipSource = "auto"
)

type ClipReframeMode string

const (
	ClipReframeCenter ClipReframeMode = "center"
	ClipReframeFace   ClipReframeMode = "face"
)

// Clip rows carry both user-authored clips and auto suggestions; suggestions
// are source="auto" so we avoid a parallel table. Regeneration soft-deletes
// the previous auto set in the same transaction that inserts the new one.
type Clip struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SermonID          int64           `gorm:"not null;index" json:"sermon_id"`
	StartMS           int             `gorm:"column:start_ms;not null" json:"start_ms"`
	EndMS             int             `gorm:"column:end_ms;not null" json:"end_ms"`
	OutputURL         *string         `gorm:"type:varchar(1024);column:output_url" json:"output_url,omitempty"`
	Status            ClipStatus      `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	Source            ClipSource      `gorm:"type:varchar(16);not null;default:'manual'" json:"source"`
	Score             *float64        `json:"score,omitempty"`
	Rationale         *string         `gorm:"type:text" json:"rationale,omitempty"`
	UseLLM            bool            `gorm:"column:use_llm;not null;default:false" json:"use_llm"`
	LLMTrim           datatypes.JSON  `gorm:"type:jsonb;column:llm_trim" json:"llm_trim,omitempty"`
	LLMTrimConfidence *float64        `gorm:"column:llm_trim_confidence" json:"llm_trim_confidence,omitempty"`
	TrimApplied       bool            `gorm:"column:trim_applied;not null;default:false" json:"trim_applied"`
	LLMTokenUsage     datatypes.JSON  `gorm:"type:jsonb;column:llm_token_usage" json:"llm_token_usage,omitempty"`
	TemplateID        *string         `gorm:"type:varchar(36);column:template_id" json:"template_id,omitempty"`
	ReframeMode       ClipReframeMode `gorm:"type:varchar(16);column:reframe_mode;not null;default:'center'" json:"reframe_mode"`
	CreatedAt         time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

func (Clip) TableName() string {
	return "clips"
}
