package models

import (
	"time"

	"gorm.io/datatypes"
)

// ErrorLog is a captured client error. Open rows with the same
// (error_type, message, component) are coalesced through OccurrenceCount.
type ErrorLog struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	ErrorType       string         `gorm:"size:100;index:idx_error_signature;not null" json:"errorType"`
	Severity        string         `gorm:"size:20;index;not null" json:"severity"`
	Message         string         `gorm:"size:1000;index:idx_error_signature;not null" json:"message"`
	StackTrace      string         `gorm:"type:text" json:"stackTrace,omitempty"`
	Component       string         `gorm:"size:200;index:idx_error_signature" json:"component,omitempty"`
	Module          string         `gorm:"size:50" json:"module,omitempty"`
	Context         datatypes.JSON `json:"context,omitempty"`
	UserID          string         `gorm:"size:36" json:"userId,omitempty"`
	OccurrenceCount int            `gorm:"not null;default:1" json:"occurrenceCount"`
	FirstSeen       time.Time      `json:"firstSeen"`
	LastSeen        time.Time      `gorm:"index" json:"lastSeen"`
	Resolved        bool           `gorm:"index;not null;default:false" json:"resolved"`
	ResolvedBy      string         `gorm:"size:36" json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
}

// TableName specifies the database table name for the ErrorLog model.
func (ErrorLog) TableName() string {
	return "error_logs"
}
