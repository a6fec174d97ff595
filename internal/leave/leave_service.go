package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go-lms/internal/employee"
	employeeerrors "go-lms/internal/employee/errors"
	"go-lms/internal/events"
	leaveerrors "go-lms/internal/leave/errors"
	"go-lms/internal/messaging/kafka"
	"go-lms/internal/shared/apperror"
	"go-lms/internal/shared/contextutil"
	"go-lms/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (ApplyLeaveResponse, error)
	Approve(ctx context.Context, leaveID int64) (TransitionResponse, error)
	Reject(ctx context.Context, leaveID int64, reason string) (TransitionResponse, error)
	Cancel(ctx context.Context, req CancelLeaveRequest) (TransitionResponse, error)
	GetByID(ctx context.Context, leaveID int64) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID int64) ([]LeaveResponse, error)
	GetPending(ctx context.Context, employeeID *int64, limit int) ([]LeaveResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	ledger  employee.Ledger
	counter counter.Repository
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger employee.Ledger,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		ledger:  ledger,
		counter: counterRepo,
		outbox:  outboxRepo,
		logger:  l,
	}
}

// Apply checks balance sufficiency but reserves nothing: the debit happens at
// approval, which re-validates. Another request may consume the balance in
// between (soft hold).
func (s *service) Apply(ctx context.Context, req ApplyLeaveRequest) (ApplyLeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.Int64("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, endDate, duration, err := validateDates(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("apply leave validation failed", zap.Error(err))
		return ApplyLeaveResponse{}, err
	}

	emp, balances, err := s.ledger.Lookup(ctx, req.EmployeeID)
	if err != nil {
		return ApplyLeaveResponse{}, err
	}
	balance, ok := balances[req.LeaveType]
	if !ok {
		s.logger.Warn("apply leave unknown leave type",
			zap.Int64("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
		)
		return ApplyLeaveResponse{}, employeeerrors.ErrUnknownLeaveType
	}
	if balance < duration {
		s.logger.Warn("apply leave insufficient balance",
			zap.Int64("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
			zap.Int("available", balance),
			zap.Int("required", duration),
		)
		return ApplyLeaveResponse{}, employeeerrors.ErrInsufficientBalance
	}

	leaveID, err := s.counter.GetNextValue(ctx, counter.TypeLeaveRequest)
	if err != nil {
		s.logger.Error("apply leave id generation failed", zap.Error(err))
		return ApplyLeaveResponse{}, apperror.WrapStore(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return ApplyLeaveResponse{}, apperror.WrapStore(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l := &LeaveRequest{
		ID:           leaveID,
		EmployeeID:   req.EmployeeID,
		EmployeeName: emp.Name,
		LeaveType:    req.LeaveType,
		StartDate:    startDate,
		EndDate:      endDate,
		Duration:     duration,
		Status:       StatusPending,
		AppliedAt:    time.Now().UTC(),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return ApplyLeaveResponse{}, apperror.WrapStore(err)
	}

	if err := s.enqueueNotification(ctx, tx, l, events.LeaveAppliedEvent); err != nil {
		return ApplyLeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return ApplyLeaveResponse{}, apperror.WrapStore(err)
	}

	s.logger.Info("apply leave success",
		zap.Int64("leave_id", leaveID),
		zap.Int64("employee_id", req.EmployeeID),
		zap.Int("duration", duration),
	)

	return ApplyLeaveResponse{
		LeaveID:          leaveID,
		Status:           StatusPending,
		Duration:         duration,
		LeaveType:        req.LeaveType,
		AvailableBalance: balance,
	}, nil
}

// Approve commits the debit. The status flip and the balance write share one
// transaction: the request can never end up APPROVED without its debit, or
// debited without being APPROVED.
func (s *service) Approve(ctx context.Context, leaveID int64) (TransitionResponse, error) {
	s.logger.Debug("approve leave requested", zap.Int64("leave_id", leaveID))

	l, err := s.findByID(ctx, leaveID)
	if err != nil {
		return TransitionResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("approve leave not pending",
			zap.Int64("leave_id", leaveID),
			zap.String("status", l.Status),
		)
		return TransitionResponse{}, leaveerrors.AlreadyInState(l.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	swapped, err := qtx.TransitionStatus(ctx, leaveID, StatusPending, StatusApproved, now, nil)
	if err != nil {
		s.logger.Error("approve leave status swap failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	if !swapped {
		return TransitionResponse{}, s.concurrentTransitionError(ctx, leaveID)
	}

	newBalance, err := s.ledger.WithTx(tx).Debit(ctx, l.EmployeeID, l.LeaveType, l.Duration)
	if err != nil {
		s.logger.Warn("approve leave debit rejected",
			zap.Int64("leave_id", leaveID),
			zap.Int64("employee_id", l.EmployeeID),
			zap.Error(err),
		)
		return TransitionResponse{}, err
	}

	l.Status = StatusApproved
	if err := s.enqueueNotification(ctx, tx, l, events.LeaveApprovedEvent); err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}

	// The debit is visible now, so the cached balance is only dropped here.
	s.ledger.InvalidateBalance(ctx, l.EmployeeID)

	s.logger.Info("approve leave success",
		zap.Int64("leave_id", leaveID),
		zap.Int64("employee_id", l.EmployeeID),
		zap.Int("new_balance", newBalance),
	)

	return TransitionResponse{
		LeaveID:    leaveID,
		Status:     StatusApproved,
		LeaveType:  l.LeaveType,
		NewBalance: &newBalance,
	}, nil
}

func (s *service) Reject(ctx context.Context, leaveID int64, reason string) (TransitionResponse, error) {
	s.logger.Debug("reject leave requested", zap.Int64("leave_id", leaveID))

	l, err := s.findByID(ctx, leaveID)
	if err != nil {
		return TransitionResponse{}, err
	}
	if l.Status != StatusPending {
		return TransitionResponse{}, leaveerrors.AlreadyInState(l.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	var rejectionReason *string
	if reason != "" {
		rejectionReason = &reason
	}

	swapped, err := qtx.TransitionStatus(ctx, leaveID, StatusPending, StatusRejected, time.Now().UTC(), rejectionReason)
	if err != nil {
		s.logger.Error("reject leave status swap failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	if !swapped {
		return TransitionResponse{}, s.concurrentTransitionError(ctx, leaveID)
	}

	l.Status = StatusRejected
	if err := s.enqueueNotification(ctx, tx, l, events.LeaveRejectedEvent); err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}

	s.logger.Info("reject leave success", zap.Int64("leave_id", leaveID))

	return TransitionResponse{
		LeaveID:         leaveID,
		Status:          StatusRejected,
		LeaveType:       l.LeaveType,
		RejectionReason: rejectionReason,
	}, nil
}

// Cancel restores exactly the recorded duration when the request was APPROVED,
// regardless of what the balance has become since.
func (s *service) Cancel(ctx context.Context, req CancelLeaveRequest) (TransitionResponse, error) {
	l, err := s.resolveCancelTarget(ctx, req)
	if err != nil {
		return TransitionResponse{}, err
	}

	s.logger.Debug("cancel leave requested",
		zap.Int64("leave_id", l.ID),
		zap.String("status", l.Status),
	)

	if l.Status == StatusCancelled {
		return TransitionResponse{}, leaveerrors.AlreadyInState(StatusCancelled)
	}
	previousStatus := l.Status

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	swapped, err := qtx.TransitionStatus(ctx, l.ID, previousStatus, StatusCancelled, time.Now().UTC(), nil)
	if err != nil {
		s.logger.Error("cancel leave status swap failed", zap.Int64("leave_id", l.ID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}
	if !swapped {
		return TransitionResponse{}, s.concurrentTransitionError(ctx, l.ID)
	}

	resp := TransitionResponse{
		LeaveID:   l.ID,
		Status:    StatusCancelled,
		LeaveType: l.LeaveType,
	}

	if previousStatus == StatusApproved {
		newBalance, err := s.ledger.WithTx(tx).Credit(ctx, l.EmployeeID, l.LeaveType, l.Duration)
		if err != nil {
			s.logger.Error("cancel leave credit failed",
				zap.Int64("leave_id", l.ID),
				zap.Int64("employee_id", l.EmployeeID),
				zap.Error(err),
			)
			return TransitionResponse{}, err
		}
		resp.NewBalance = &newBalance
	}

	l.Status = StatusCancelled
	if err := s.enqueueNotification(ctx, tx, l, events.LeaveCancelledEvent); err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed", zap.Int64("leave_id", l.ID), zap.Error(err))
		return TransitionResponse{}, apperror.WrapStore(err)
	}

	if previousStatus == StatusApproved {
		s.ledger.InvalidateBalance(ctx, l.EmployeeID)
	}

	s.logger.Info("cancel leave success",
		zap.Int64("leave_id", l.ID),
		zap.String("previous_status", previousStatus),
	)
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, leaveID int64) (LeaveResponse, error) {
	l, err := s.findByID(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID int64) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("get leaves by employee failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, apperror.WrapStore(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetPending(ctx context.Context, employeeID *int64, limit int) ([]LeaveResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	leaves, err := s.repo.FindPending(ctx, employeeID, limit)
	if err != nil {
		s.logger.Error("get pending leaves failed", zap.Error(err))
		return nil, apperror.WrapStore(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) findByID(ctx context.Context, leaveID int64) (*LeaveRequest, error) {
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("find leave failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return nil, apperror.WrapStore(err)
	}
	return l, nil
}

func (s *service) resolveCancelTarget(ctx context.Context, req CancelLeaveRequest) (*LeaveRequest, error) {
	if req.LeaveID != nil {
		return s.findByID(ctx, *req.LeaveID)
	}

	if req.EmployeeID == nil || req.LeaveType == nil || req.StartDate == nil {
		return nil, leaveerrors.ErrCancelTargetRequired
	}

	startDate, err := parseDate(*req.StartDate)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.FindLatestByTuple(ctx, *req.EmployeeID, *req.LeaveType, startDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("cancel leave tuple lookup failed",
			zap.Int64("employee_id", *req.EmployeeID),
			zap.String("leave_type", *req.LeaveType),
			zap.Error(err),
		)
		return nil, apperror.WrapStore(err)
	}
	return l, nil
}

// concurrentTransitionError re-reads the row after a lost compare-and-swap so
// the caller learns which terminal state won.
func (s *service) concurrentTransitionError(ctx context.Context, leaveID int64) error {
	current, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return leaveerrors.ErrInvalidStatusTransition
	}
	s.logger.Warn("leave transition lost to concurrent update",
		zap.Int64("leave_id", leaveID),
		zap.String("current_status", current.Status),
	)
	return leaveerrors.AlreadyInState(current.Status)
}

func (s *service) enqueueNotification(ctx context.Context, tx *sql.Tx, l *LeaveRequest, eventType string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.LeaveNotificationEvent{
		EventType:    eventType,
		LeaveID:      l.ID,
		EmployeeID:   l.EmployeeID,
		EmployeeName: l.EmployeeName,
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate.Format("2006-01-02"),
		EndDate:      l.EndDate.Format("2006-01-02"),
		Duration:     l.Duration,
		Status:       l.Status,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   strconv.FormatInt(l.ID, 10),
		EventType:     eventType,
		Topic:         events.LeaveNotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("enqueue leave notification failed",
			zap.Int64("leave_id", l.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return apperror.WrapStore(err)
	}
	return nil
}

func validateDates(start, end string) (time.Time, time.Time, int, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, 0, leaveerrors.ErrInvalidDateRange
	}

	// Inclusive of both boundary dates.
	duration := int(endDate.Sub(startDate).Hours()/24) + 1
	return startDate, endDate, duration, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID,
		EmployeeID:      l.EmployeeID,
		EmployeeName:    l.EmployeeName,
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format("2006-01-02"),
		EndDate:         l.EndDate.Format("2006-01-02"),
		Duration:        l.Duration,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		AppliedAt:       l.AppliedAt.Format(time.RFC3339),
	}
	resp.ApprovedAt = formatStamp(l.ApprovedAt)
	resp.RejectedAt = formatStamp(l.RejectedAt)
	resp.CancelledAt = formatStamp(l.CancelledAt)
	resp.NotificationSentAt = formatStamp(l.NotificationSentAt)
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func formatStamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
