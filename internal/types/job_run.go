package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobRun is one execution record for a background task. The Temporal workflow
// ticks against this row; retry scheduling is expressed as WaitUntil.
type JobRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobType     string         `gorm:"type:varchar(64);not null;index" json:"job_type"`
	SermonID    int64          `gorm:"not null;index" json:"sermon_id"`
	Status      string         `gorm:"type:varchar(32);not null;default:'queued'" json:"status"`
	Stage       string         `gorm:"type:varchar(64);not null;default:'queued'" json:"stage"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	Message     string         `gorm:"type:text" json:"message"`
	Error       string         `gorm:"type:text" json:"error"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Result      datatypes.JSON `gorm:"type:jsonb" json:"result"`
	WaitUntil   *time.Time     `gorm:"column:wait_until" json:"wait_until,omitempty"`
	LockedAt    *time.Time     `json:"locked_at,omitempty"`
	HeartbeatAt *time.Time     `json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time     `json:"last_error_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (JobRun) TableName() string {
	return "job_runs"
}
