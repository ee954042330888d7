package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is one recorded user action. Rows are append only.
type AuditLog struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	UserID      string         `gorm:"size:36;index" json:"userId"`
	ActionType  string         `gorm:"size:20;index;not null" json:"actionType"`
	Module      string         `gorm:"size:50;index;not null" json:"module"`
	EntityType  string         `gorm:"size:50" json:"entityType,omitempty"`
	EntityID    string         `gorm:"size:64" json:"entityId,omitempty"`
	OldData     datatypes.JSON `json:"oldData,omitempty"`
	NewData     datatypes.JSON `json:"newData,omitempty"`
	Description string         `gorm:"type:text" json:"description"`
	UserAgent   string         `gorm:"size:255" json:"userAgent,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}

// TableName specifies the database table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}
