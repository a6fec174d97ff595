package leave

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// stampColumns maps a target status to the timestamp column its transition owns.
var stampColumns = map[string]string{
	StatusApproved:  "approved_at",
	StatusRejected:  "rejected_at",
	StatusCancelled: "cancelled_at",
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id int64) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error)
	FindLatestByTuple(ctx context.Context, employeeID int64, leaveType string, startDate time.Time) (*LeaveRequest, error)
	FindPending(ctx context.Context, employeeID *int64, limit int) ([]LeaveRequest, error)
	TransitionStatus(ctx context.Context, id int64, from, to string, at time.Time, rejectionReason *string) (bool, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
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

// Create runs through the raw executor so an apply shares its transaction with
// the outbox write.
func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	query := `
INSERT INTO leave_requests (
	id, employee_id, employee_name, leave_type, start_date, end_date, duration, status, applied_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		l.ID, l.EmployeeID, l.EmployeeName, l.LeaveType,
		l.StartDate, l.EndDate, l.Duration, l.Status, l.AppliedAt,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("applied_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// FindLatestByTuple resolves a tuple-based cancellation target: when several
// requests share employee, type and start date, the most recently applied wins.
func (r *repository) FindLatestByTuple(ctx context.Context, employeeID int64, leaveType string, startDate time.Time) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("start_date = ?", startDate).
		Order("applied_at DESC").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindPending(ctx context.Context, employeeID *int64, limit int) ([]LeaveRequest, error) {
	db := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("applied_at ASC").
		Limit(limit)

	if employeeID != nil {
		db = db.Where("employee_id = ?", *employeeID)
	}

	var leaves []LeaveRequest
	err := db.Find(&leaves).Error
	return leaves, err
}

// TransitionStatus is a compare-and-swap: the UPDATE only fires while the row
// is still in the expected source status. A false return means a concurrent
// transition already moved the request; the caller decides how to report that.
func (r *repository) TransitionStatus(ctx context.Context, id int64, from, to string, at time.Time, rejectionReason *string) (bool, error) {
	col, ok := stampColumns[to]
	if !ok {
		return false, fmt.Errorf("no timestamp column for status %s", to)
	}

	query := fmt.Sprintf(`
UPDATE leave_requests
SET status = $1, %s = $2
WHERE id = $3 AND status = $4
`, col)
	args := []any{to, at, id, from}

	if rejectionReason != nil {
		query = fmt.Sprintf(`
UPDATE leave_requests
SET status = $1, %s = $2, rejection_reason = $5
WHERE id = $3 AND status = $4
`, col)
		args = append(args, *rejectionReason)
	}

	res, err := r.execer().ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkNotified is an idempotent overwrite; resending a notification refreshes
// the marker without touching the state machine.
func (r *repository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	query := `
UPDATE leave_requests
SET notification_sent_at = $2
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, at)
	return err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
