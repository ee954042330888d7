package models

import "time"

// AttendanceStatus is the outcome of one working day.
type AttendanceStatus string

// Attendance statuses. Half counts as half a day for payroll.
const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalf    AttendanceStatus = "half"
	AttendanceOff     AttendanceStatus = "off"
)

// Attendance is the mark of one employee on one date, unique per (employee_id, date).
type Attendance struct {
	ID         uint64           `gorm:"primaryKey" json:"id"`
	EmployeeID string           `gorm:"size:36;not null;uniqueIndex:idx_attendance_employee_date" json:"employeeId"`
	Date       string           `gorm:"size:10;not null;uniqueIndex:idx_attendance_employee_date;index" json:"date"`
	Status     AttendanceStatus `gorm:"size:10;not null" json:"status"`
	MarkedBy   string           `gorm:"size:36" json:"markedBy"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// TableName specifies the database table name for the Attendance model.
func (Attendance) TableName() string {
	return "attendances"
}
