package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-lms/internal/employee"
	employeeerrors "go-lms/internal/employee/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	createFn        func(ctx context.Context, e *employee.Employee) error
	findByIDFn      func(ctx context.Context, id int64) (*employee.Employee, error)
	balancesFn      func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error)
	debitBalanceFn  func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error)
	creditBalanceFn func(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) Balances(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
	if f.balancesFn != nil {
		return f.balancesFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) DebitBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
	if f.debitBalanceFn != nil {
		return f.debitBalanceFn(ctx, employeeID, leaveType, days)
	}
	return 0, false, nil
}

func (f *fakeEmployeeRepository) CreditBalance(ctx context.Context, employeeID int64, leaveType string, days int) (int, bool, error) {
	if f.creditBalanceFn != nil {
		return f.creditBalanceFn(ctx, employeeID, leaveType, days)
	}
	return 0, false, nil
}

type employeeServiceDeps struct {
	service   employee.Service
	repo      *fakeEmployeeRepository
	rdb       *redis.Client
	redisMock redismock.ClientMock
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEmployeeRepository{}
	svc := employee.NewService(repo, rdb)

	return &employeeServiceDeps{
		service:   svc,
		repo:      repo,
		rdb:       rdb,
		redisMock: redisMock,
	}
}

func johnDoe() *employee.Employee {
	return &employee.Employee{
		ID:         1001,
		Name:       "John Doe",
		Email:      "john.doe@example.com",
		Department: "Engineering",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		req := employee.CreateEmployeeRequest{
			ID:         1001,
			Name:       "John Doe",
			Email:      "john.doe@example.com",
			Department: "Engineering",
			LeaveBalances: map[string]int{
				"Annual": 20,
				"Sick":   12,
			},
		}

		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, int64(1001), e.ID)
			assert.Len(t, e.Balances, 2)
			return nil
		}

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, int64(1001), resp.ID)
		assert.Equal(t, "John Doe", resp.Name)
	})

	t.Run("negative duplicate id", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			return &pgconn.PgError{Code: "23505"}
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{ID: 1001, Name: "John Doe"})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("negative negative balance", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			ID:            1001,
			Name:          "John Doe",
			LeaveBalances: map[string]int{"Annual": -1},
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDays)
	})
}

func TestEmployeeService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("success cache miss loads and stores", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		cacheKey := employee.GetBalanceCacheKey(1001)

		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return johnDoe(), nil
		}
		deps.repo.balancesFn = func(ctx context.Context, employeeID int64) ([]employee.LeaveBalance, error) {
			return []employee.LeaveBalance{
				{EmployeeID: 1001, LeaveType: "Annual", Days: 20},
				{EmployeeID: 1001, LeaveType: "Sick", Days: 12},
			}, nil
		}

		expected := employee.BalanceResponse{
			EmployeeID:    1001,
			EmployeeName:  "John Doe",
			Department:    "Engineering",
			LeaveBalances: map[string]int{"Annual": 20, "Sick": 12},
		}
		payload, err := json.Marshal(expected)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, payload, 5*time.Minute).SetVal("OK")

		resp, err := deps.service.GetBalance(ctx, 1001)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("success cache hit skips repo", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		cacheKey := employee.GetBalanceCacheKey(1001)

		cached := employee.BalanceResponse{
			EmployeeID:    1001,
			EmployeeName:  "John Doe",
			Department:    "Engineering",
			LeaveBalances: map[string]int{"Annual": 17},
		}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).SetVal(string(payload))
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			t.Fatal("repo should not be hit on cache hit")
			return nil, nil
		}

		resp, err := deps.service.GetBalance(ctx, 1001)

		assert.NoError(t, err)
		assert.Equal(t, 17, resp.LeaveBalances["Annual"])
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("negative employee not found", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		cacheKey := employee.GetBalanceCacheKey(9999)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()

		_, err := deps.service.GetBalance(ctx, 9999)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		cacheKey := employee.GetBalanceCacheKey(1001)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return nil, errors.New("db error")
		}

		_, err := deps.service.GetBalance(ctx, 1001)

		assert.Error(t, err)
	})
}
