package models

import "time"

// PixKeyType is the kind of PIX key an employee is paid to.
type PixKeyType string

// Supported PIX key types.
const (
	PixKeyCPF    PixKeyType = "cpf"
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

// Employee is a worker whose attendance is tracked and who is paid via PIX.
type Employee struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Name       string     `gorm:"size:200;not null" json:"name"`
	CPF        string     `gorm:"size:11;uniqueIndex;not null" json:"cpf"`
	Position   string     `gorm:"size:100" json:"position"`
	PixKey     string     `gorm:"size:140" json:"pixKey"`
	PixKeyType PixKeyType `gorm:"size:10" json:"pixKeyType"`
	// DailyRate is the pay for one full day in centavos.
	DailyRate int64     `gorm:"not null" json:"dailyRate"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Employee model.
func (Employee) TableName() string {
	return "employees"
}
