package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserPermission stores the permission set of one user as a JSON document
// of the form {"<module>":{"<action>":bool}}.
type UserPermission struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Permissions datatypes.JSON `json:"permissions"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName specifies the database table name for the UserPermission model.
func (UserPermission) TableName() string {
	return "user_permissions"
}

// PermissionChangeLog is one save event of a user's permission set. Rows are never updated or deleted.
type PermissionChangeLog struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"size:36;index;not null" json:"userId"`
	ChangedBy string `gorm:"size:36;not null" json:"changedBy"`
	// Before is NULL when the save created the permission set.
	Before    datatypes.JSON `json:"before"`
	After     datatypes.JSON `json:"after"`
	Summary   string         `gorm:"type:text" json:"summary"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

// TableName specifies the database table name for the PermissionChangeLog model.
func (PermissionChangeLog) TableName() string {
	return "permission_change_logs"
}
