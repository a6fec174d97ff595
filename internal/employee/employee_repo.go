package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	Balances(ctx context.Context, employeeID int64) ([]LeaveBalance, error)
	DebitBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error)
	CreditBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	sqlDB, _ := db.DB()
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) Balances(ctx context.Context, employeeID int64) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

// DebitBalance subtracts days only when the current balance covers them.
// The condition lives in the UPDATE itself so concurrent debits for the same
// employee and type cannot lose updates or drive the balance negative.
func (r *repository) DebitBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
	query := `
UPDATE leave_balances
SET days = days - $3, updated_at = now()
WHERE employee_id = $1 AND leave_type = $2 AND days >= $3
RETURNING days
`
	var newBalance int
	err := r.querier().QueryRowContext(ctx, query, employeeID, leaveType, days).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

// CreditBalance adds days unconditionally; there is no policy cap on restored balance.
func (r *repository) CreditBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
	query := `
UPDATE leave_balances
SET days = days + $3, updated_at = now()
WHERE employee_id = $1 AND leave_type = $2
RETURNING days
`
	var newBalance int
	err := r.querier().QueryRowContext(ctx, query, employeeID, leaveType, days).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
