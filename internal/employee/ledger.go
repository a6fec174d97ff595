package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	employeeerrors "go-lms/internal/employee/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const BalanceCacheKeyPrefix = "employees:balance:"

func GetBalanceCacheKey(employeeID int64) string {
	return fmt.Sprintf("%s%d", BalanceCacheKeyPrefix, employeeID)
}

// Ledger owns every mutation of per-employee, per-type leave balances.
// Callers running a broader transaction pass it in via WithTx so the balance
// write commits or rolls back together with their own writes.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	Lookup(ctx context.Context, employeeID int64) (*Employee, map[string]int, error)
	Debit(ctx context.Context, employeeID int64, leaveType string, days int) (int, error)
	Credit(ctx context.Context, employeeID int64, leaveType string, days int) (int, error)
	InvalidateBalance(ctx context.Context, employeeID int64)
}

type ledger struct {
	repo   Repository
	rdb    *redis.Client
	inTx   bool
	logger *zap.Logger
}

func NewLedger(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("employee.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.ledger")
	}
	return &ledger{repo: repo, rdb: rdb, logger: l}
}

// WithTx scopes the ledger to the caller's transaction. The tx-scoped ledger
// never touches the cache itself: dropping the key while the balance write is
// still uncommitted would let a concurrent read re-cache the old balance, so
// the caller invokes InvalidateBalance after its commit instead.
func (s *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: s.repo.WithTx(tx), rdb: s.rdb, inTx: true, logger: s.logger}
}

// Lookup returns the employee and a snapshot of its balances. The snapshot is
// for guard checks only; Debit re-validates inside its own UPDATE.
func (s *ledger) Lookup(ctx context.Context, employeeID int64) (*Employee, map[string]int, error) {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("employee lookup failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, nil, err
	}

	rows, err := s.repo.Balances(ctx, employeeID)
	if err != nil {
		s.logger.Error("balance lookup failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, nil, err
	}

	balances := make(map[string]int, len(rows))
	for _, b := range rows {
		balances[b.LeaveType] = b.Days
	}
	return e, balances, nil
}

func (s *ledger) Debit(ctx context.Context, employeeID int64, leaveType string, days int) (int, error) {
	if days <= 0 {
		return 0, employeeerrors.ErrInvalidDays
	}

	newBalance, applied, err := s.repo.DebitBalance(ctx, employeeID, leaveType, days)
	if err != nil {
		s.logger.Error("debit balance failed",
			zap.Int64("employee_id", employeeID),
			zap.String("leave_type", leaveType),
			zap.Int("days", days),
			zap.Error(err),
		)
		return 0, err
	}
	if !applied {
		return 0, s.classifyRejectedMutation(ctx, employeeID, leaveType, true)
	}

	if !s.inTx {
		s.invalidateCache(ctx, employeeID)
	}
	s.logger.Info("balance debited",
		zap.Int64("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.Int("days", days),
		zap.Int("new_balance", newBalance),
	)
	return newBalance, nil
}

func (s *ledger) Credit(ctx context.Context, employeeID int64, leaveType string, days int) (int, error) {
	if days <= 0 {
		return 0, employeeerrors.ErrInvalidDays
	}

	newBalance, applied, err := s.repo.CreditBalance(ctx, employeeID, leaveType, days)
	if err != nil {
		s.logger.Error("credit balance failed",
			zap.Int64("employee_id", employeeID),
			zap.String("leave_type", leaveType),
			zap.Int("days", days),
			zap.Error(err),
		)
		return 0, err
	}
	if !applied {
		return 0, s.classifyRejectedMutation(ctx, employeeID, leaveType, false)
	}

	if !s.inTx {
		s.invalidateCache(ctx, employeeID)
	}
	s.logger.Info("balance credited",
		zap.Int64("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.Int("days", days),
		zap.Int("new_balance", newBalance),
	)
	return newBalance, nil
}

// classifyRejectedMutation explains a conditional update that touched no rows:
// the employee is missing, the leave type is missing, or (debit only) the
// balance does not cover the requested days.
func (s *ledger) classifyRejectedMutation(ctx context.Context, employeeID int64, leaveType string, debit bool) error {
	_, balances, err := s.Lookup(ctx, employeeID)
	if err != nil {
		return err
	}
	if _, ok := balances[leaveType]; !ok {
		return employeeerrors.ErrUnknownLeaveType
	}
	if debit {
		return employeeerrors.ErrInsufficientBalance
	}
	return employeeerrors.ErrUnknownLeaveType
}

// InvalidateBalance drops the cached balance snapshot. Callers that mutated
// balances through WithTx call this once their transaction has committed.
func (s *ledger) InvalidateBalance(ctx context.Context, employeeID int64) {
	s.invalidateCache(ctx, employeeID)
}

func (s *ledger) invalidateCache(ctx context.Context, employeeID int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, GetBalanceCacheKey(employeeID)).Err(); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.Int64("employee_id", employeeID),
			zap.Error(err),
		)
	}
}
