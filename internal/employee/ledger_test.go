package employee_test

import (
	"context"
	"errors"
	"testing"

	"go-lms/internal/employee"
	employeeerrors "go-lms/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type ledgerDeps struct {
	ledger    employee.Ledger
	repo      *fakeEmployeeRepository
	redisMock redismock.ClientMock
}

func setupLedgerTest(t *testing.T) *ledgerDeps {
	t.Helper()

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEmployeeRepository{}
	l := employee.NewLedger(repo, rdb)

	return &ledgerDeps{
		ledger:    l,
		repo:      repo,
		redisMock: redisMock,
	}
}

func TestLedger_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return johnDoe(), nil
		}
		deps.repo.balancesFn = func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
			return []employee.LeaveBalance{
				{EmployeeID: 1001, LeaveType: "Annual", Days: 20},
			}, nil
		}

		e, balances, err := deps.ledger.Lookup(ctx, 1001)

		assert.NoError(t, err)
		assert.Equal(t, "John Doe", e.Name)
		assert.Equal(t, 20, balances["Annual"])
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLedgerTest(t)

		_, _, err := deps.ledger.Lookup(ctx, 9999)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates cache", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.debitBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			assert.Equal(t, int64(1001), employeeID)
			assert.Equal(t, "Annual", leaveType)
			assert.Equal(t, 3, days)
			return 17, true, nil
		}
		deps.redisMock.ExpectDel(employee.GetBalanceCacheKey(1001)).SetVal(1)

		newBalance, err := deps.ledger.Debit(ctx, 1001, "Annual", 3)

		assert.NoError(t, err)
		assert.Equal(t, 17, newBalance)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.debitBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 0, false, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return johnDoe(), nil
		}
		deps.repo.balancesFn = func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
			return []employee.LeaveBalance{
				{EmployeeID: 1001, LeaveType: "Annual", Days: 2},
			}, nil
		}

		_, err := deps.ledger.Debit(ctx, 1001, "Annual", 3)

		assert.ErrorIs(t, err, employeeerrors.ErrInsufficientBalance)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.debitBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 0, false, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return johnDoe(), nil
		}
		deps.repo.balancesFn = func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
			return []employee.LeaveBalance{
				{EmployeeID: 1001, LeaveType: "Annual", Days: 20},
			}, nil
		}

		_, err := deps.ledger.Debit(ctx, 1001, "Sabbatical", 3)

		assert.ErrorIs(t, err, employeeerrors.ErrUnknownLeaveType)
	})

	t.Run("negative non positive days", func(t *testing.T) {
		deps := setupLedgerTest(t)

		_, err := deps.ledger.Debit(ctx, 1001, "Annual", 0)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDays)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.debitBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 0, false, errors.New("db error")
		}

		_, err := deps.ledger.Debit(ctx, 1001, "Annual", 3)

		assert.Error(t, err)
	})
}

func TestLedger_DeferredCacheInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("tx scoped debit leaves cache untouched", func(t *testing.T) {
		deps := setupLedgerTest(t)

		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		deps.repo.debitBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 17, true, nil
		}
		deps.redisMock.ExpectDel(employee.GetBalanceCacheKey(1001)).SetVal(1)

		newBalance, err := deps.ledger.WithTx(tx).Debit(ctx, 1001, "Annual", 3)

		assert.NoError(t, err)
		assert.Equal(t, 17, newBalance)
		// The Del must still be pending: a read racing the open transaction
		// would re-cache the pre-debit balance otherwise.
		assert.Error(t, deps.redisMock.ExpectationsWereMet())

		deps.ledger.InvalidateBalance(ctx, 1001)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("tx scoped credit leaves cache untouched", func(t *testing.T) {
		deps := setupLedgerTest(t)

		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		deps.repo.creditBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 20, true, nil
		}
		deps.redisMock.ExpectDel(employee.GetBalanceCacheKey(1001)).SetVal(1)

		newBalance, err := deps.ledger.WithTx(tx).Credit(ctx, 1001, "Annual", 3)

		assert.NoError(t, err)
		assert.Equal(t, 20, newBalance)
		assert.Error(t, deps.redisMock.ExpectationsWereMet())

		deps.ledger.InvalidateBalance(ctx, 1001)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}

func TestLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates cache", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.creditBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			assert.Equal(t, 3, days)
			return 20, true, nil
		}
		deps.redisMock.ExpectDel(employee.GetBalanceCacheKey(1001)).SetVal(1)

		newBalance, err := deps.ledger.Credit(ctx, 1001, "Annual", 3)

		assert.NoError(t, err)
		assert.Equal(t, 20, newBalance)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		deps := setupLedgerTest(t)

		deps.repo.creditBalanceFn = func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
			return 0, false, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return johnDoe(), nil
		}
		deps.repo.balancesFn = func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
			return nil, nil
		}

		_, err := deps.ledger.Credit(ctx, 1001, "Sabbatical", 3)

		assert.ErrorIs(t, err, employeeerrors.ErrUnknownLeaveType)
	})
}
