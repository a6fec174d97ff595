package events

import "time"

const LeaveNotificationTopic = "lms.leave.notifications.v1"

const (
	LeaveAppliedEvent            = "leave.applied"
	LeaveApprovedEvent           = "leave.approved"
	LeaveRejectedEvent           = "leave.rejected"
	LeaveCancelledEvent          = "leave.cancelled"
	LeaveNotificationResendEvent = "leave.notification.resend"
)

// LeaveNotificationEvent is emitted after a leave request transition commits.
// The notification consumer turns it into employee/approver messages and
// stamps notificationSentAt on the request.
type LeaveNotificationEvent struct {
	EventType    string    `json:"event_type"`
	LeaveID      int64     `json:"leave_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	LeaveType    string    `json:"leave_type"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Duration     int       `json:"duration"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
