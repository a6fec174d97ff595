package employee

import "time"

type Employee struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	Name       string `gorm:"type:varchar(120);not null"`
	Email      string `gorm:"type:varchar(255)"`
	Department string `gorm:"type:varchar(80)"`

	Balances []LeaveBalance `gorm:"foreignKey:EmployeeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveBalance is one row per employee and leave type. Days is only mutated by
// the ledger's conditional debit/credit statements, never read-modify-write in
// application code, so it can never go negative.
type LeaveBalance struct {
	EmployeeID int64  `gorm:"primaryKey;autoIncrement:false"`
	LeaveType  string `gorm:"primaryKey;type:varchar(40)"`
	Days       int    `gorm:"not null;default:0"`

	UpdatedAt time.Time
}
