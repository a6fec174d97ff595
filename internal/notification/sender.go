package notification

import (
	"context"

	"go.uber.org/zap"
)

type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender is the delivery channel boundary. Delivery is best effort; the
// lifecycle engine never depends on it.
//
//go:generate mockgen -source=sender.go -destination=mock/sender_mock.go -package=mock
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type logSender struct {
	logger *zap.Logger
}

// NewLogSender records outgoing messages on the audit log channel. It stands
// in for a real mail/SNS integration in local and test environments.
func NewLogSender(logger ...*zap.Logger) Sender {
	l := zap.L().Named("notification.sender")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sender")
	}
	return &logSender{logger: l}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification sent",
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
