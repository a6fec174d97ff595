package employee

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	employeeerrors "go-lms/internal/employee/errors"
	"go-lms/internal/shared/contextutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const balanceCacheTTL = 5 * time.Minute

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetBalance(ctx context.Context, employeeID int64) (BalanceResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.Int64("employee_id", req.ID),
		zap.String("name", req.Name),
	)

	e := &Employee{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	}
	for leaveType, days := range req.LeaveBalances {
		if days < 0 {
			return EmployeeResponse{}, employeeerrors.ErrInvalidDays
		}
		e.Balances = append(e.Balances, LeaveBalance{
			EmployeeID: req.ID,
			LeaveType:  leaveType,
			Days:       days,
		})
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("create employee duplicate id", zap.Int64("employee_id", req.ID))
			return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
		}
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("create employee success", zap.Int64("employee_id", req.ID))
	return EmployeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
	}, nil
}

// GetBalance is the hot read path; concurrent reads for the same employee are
// collapsed with singleflight and the result is cached in Redis until the next
// debit or credit invalidates it.
func (s *service) GetBalance(ctx context.Context, employeeID int64) (BalanceResponse, error) {
	cacheKey := GetBalanceCacheKey(employeeID)

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached BalanceResponse
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		return s.loadBalance(ctx, employeeID)
	})
	if err != nil {
		return BalanceResponse{}, err
	}

	resp := v.(BalanceResponse)
	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, balanceCacheTTL).Err(); err != nil {
				s.logger.Warn("balance cache store failed", zap.Int64("employee_id", employeeID), zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (s *service) loadBalance(ctx context.Context, employeeID int64) (BalanceResponse, error) {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("get balance employee lookup failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	rows, err := s.repo.Balances(ctx, employeeID)
	if err != nil {
		s.logger.Error("get balance lookup failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	balances := make(map[string]int, len(rows))
	for _, b := range rows {
		balances[b.LeaveType] = b.Days
	}

	return BalanceResponse{
		EmployeeID:    e.ID,
		EmployeeName:  e.Name,
		Department:    e.Department,
		LeaveBalances: balances,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
