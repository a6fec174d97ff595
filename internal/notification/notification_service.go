package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go-lms/internal/events"
	"go-lms/internal/leave"
	leaveerrors "go-lms/internal/leave/errors"
	"go-lms/internal/messaging/kafka"
	notificationerrors "go-lms/internal/notification/errors"
	"go-lms/internal/shared/apperror"
	"go-lms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	ApproverEmail string
	EmployeeEmail string
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	// Deliver sends both copies for one transition event and stamps the
	// notification marker. Called by the Kafka consumer.
	Deliver(ctx context.Context, event events.LeaveNotificationEvent) error
	// Resend queues a fresh notification for an existing request. It is not a
	// state transition; the sent marker is simply overwritten on delivery.
	Resend(ctx context.Context, leaveID int64) (ResendResponse, error)
	Status(ctx context.Context, leaveID int64) (NotificationStatusResponse, error)
}

type service struct {
	leaveRepo leave.Repository
	outbox    kafka.OutboxRepository
	sender    Sender
	cfg       Config
	logger    *zap.Logger
}

func NewService(
	leaveRepo leave.Repository,
	outboxRepo kafka.OutboxRepository,
	sender Sender,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{
		leaveRepo: leaveRepo,
		outbox:    outboxRepo,
		sender:    sender,
		cfg:       cfg,
		logger:    l,
	}
}

func (s *service) Deliver(ctx context.Context, event events.LeaveNotificationEvent) error {
	msgs, err := composeMessages(event, s.cfg.ApproverEmail, s.cfg.EmployeeEmail)
	if err != nil {
		s.logger.Error("compose notification failed",
			zap.Int64("leave_id", event.LeaveID),
			zap.Error(err),
		)
		return err
	}

	for _, msg := range msgs {
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Error("send notification failed",
				zap.Int64("leave_id", event.LeaveID),
				zap.String("recipient", msg.Recipient),
				zap.Error(err),
			)
			return notificationerrors.ErrDispatchFailed
		}
	}

	if err := s.leaveRepo.MarkNotified(ctx, event.LeaveID, time.Now().UTC()); err != nil {
		// The messages went out; a marker failure is logged but not fatal.
		s.logger.Error("mark notification sent failed",
			zap.Int64("leave_id", event.LeaveID),
			zap.Error(err),
		)
	}

	s.logger.Info("notification delivered",
		zap.Int64("leave_id", event.LeaveID),
		zap.String("event_type", event.EventType),
	)
	return nil
}

func (s *service) Resend(ctx context.Context, leaveID int64) (ResendResponse, error) {
	l, err := s.findLeave(ctx, leaveID)
	if err != nil {
		return ResendResponse{}, err
	}

	payload, err := json.Marshal(events.LeaveNotificationEvent{
		EventType:    events.LeaveNotificationResendEvent,
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
		return ResendResponse{}, err
	}

	err = s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   strconv.FormatInt(l.ID, 10),
		EventType:     events.LeaveNotificationResendEvent,
		Topic:         events.LeaveNotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("queue notification resend failed",
			zap.Int64("leave_id", leaveID),
			zap.Error(err),
		)
		return ResendResponse{}, apperror.WrapStore(err)
	}

	s.logger.Info("notification resend queued", zap.Int64("leave_id", leaveID))
	return ResendResponse{LeaveID: leaveID, Status: "queued"}, nil
}

func (s *service) Status(ctx context.Context, leaveID int64) (NotificationStatusResponse, error) {
	l, err := s.findLeave(ctx, leaveID)
	if err != nil {
		return NotificationStatusResponse{}, err
	}

	resp := NotificationStatusResponse{
		LeaveID:          leaveID,
		NotificationSent: l.NotificationSentAt != nil,
	}
	if l.NotificationSentAt != nil {
		v := l.NotificationSentAt.Format(time.RFC3339)
		resp.SentAt = &v
	}
	return resp, nil
}

func (s *service) findLeave(ctx context.Context, leaveID int64) (*leave.LeaveRequest, error) {
	l, err := s.leaveRepo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("find leave for notification failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return nil, apperror.WrapStore(err)
	}
	return l, nil
}
