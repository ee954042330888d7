package models

import "time"

// BonusKind separates additions from deductions.
type BonusKind string

// Bonus kinds.
const (
	BonusKindBonus    BonusKind = "bonus"
	BonusKindDiscount BonusKind = "discount"
)

// Bonus is an addition or deduction for one employee on one date, unique per (employee_id, date, kind).
type Bonus struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	EmployeeID string    `gorm:"size:36;not null;uniqueIndex:idx_bonus_employee_date_kind" json:"employeeId"`
	Date       string    `gorm:"size:10;not null;uniqueIndex:idx_bonus_employee_date_kind;index" json:"date"`
	Kind       BonusKind `gorm:"size:10;not null;uniqueIndex:idx_bonus_employee_date_kind" json:"kind"`
	// Amount in centavos, always positive; Kind decides the sign.
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedBy string    `gorm:"size:36" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the Bonus model.
func (Bonus) TableName() string {
	return "bonuses"
}

// PaymentStatus tracks a payment through the PIX export.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentExported PaymentStatus = "exported"
	PaymentPaid     PaymentStatus = "paid"
)

// Payment is the amount owed to one employee for one period.
type Payment struct {
	ID          uint64        `gorm:"primaryKey" json:"id"`
	EmployeeID  string        `gorm:"size:36;not null;uniqueIndex:idx_payment_employee_period" json:"employeeId"`
	PeriodStart string        `gorm:"size:10;not null;uniqueIndex:idx_payment_employee_period" json:"periodStart"`
	PeriodEnd   string        `gorm:"size:10;not null;uniqueIndex:idx_payment_employee_period" json:"periodEnd"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Status      PaymentStatus `gorm:"size:10;not null;index" json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TableName specifies the database table name for the Payment model.
func (Payment) TableName() string {
	return "payments"
}

// All returns every model for auto migration.
func All() []any {
	return []any{
		&User{},
		&Setting{},
		&UserPermission{},
		&PermissionChangeLog{},
		&AuditLog{},
		&ErrorLog{},
		&Employee{},
		&Attendance{},
		&Bonus{},
		&Payment{},
	}
}
