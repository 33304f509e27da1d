package types

import (
	"time"

	"gorm.io/datatypes"
)

// Template holds caption styling config. Read-only from the worker's point of
// view; clips reference one by id.
type Template struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	ConfigJSON datatypes.JSON `gorm:"type:jsonb;column:config_json" json:"config_json"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  *time.Time     `gorm:"index" json:"deleted_at,omitempty"`
}

func (Template) TableName() string {
	return "templates"
}
