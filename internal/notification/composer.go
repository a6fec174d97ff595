package notification

import (
	"fmt"

	"go-lms/internal/events"
	"go-lms/internal/leave"
)

// composeMessages renders the approver and employee copies for one leave
// transition. Wording follows the established HR notification templates.
func composeMessages(event events.LeaveNotificationEvent, approverEmail, employeeEmail string) ([]Message, error) {
	details := fmt.Sprintf(
		"Employee: %s (ID: %d)\nLeave Type: %s\nPeriod: %s to %s\nStatus: %s\nLeave ID: %d",
		event.EmployeeName, event.EmployeeID,
		event.LeaveType, event.StartDate, event.EndDate,
		event.Status, event.LeaveID,
	)

	var subject, approverIntro, employeeIntro string
	switch event.Status {
	case leave.StatusPending:
		subject = fmt.Sprintf("New Leave Request: %s (%d)", event.EmployeeName, event.LeaveID)
		approverIntro = "New Leave Request Notification:\n\nPlease review this leave request at your earliest convenience."
		employeeIntro = "Leave Request Confirmation:\n\nYour leave request has been submitted and is pending approval.\nYou will be notified when your request is approved or rejected."
	case leave.StatusApproved:
		subject = fmt.Sprintf("Leave Request Approved: %s (%d)", event.EmployeeName, event.LeaveID)
		approverIntro = "Leave Request Approved Confirmation:\n\nYou have approved the following leave request."
		employeeIntro = "Leave Request Approved:\n\nYour leave request has been approved."
	case leave.StatusRejected:
		subject = fmt.Sprintf("Leave Request Rejected: %s (%d)", event.EmployeeName, event.LeaveID)
		approverIntro = "Leave Request Rejection Confirmation:\n\nYou have rejected the following leave request."
		employeeIntro = "Leave Request Rejected:\n\nYour leave request has been rejected."
	case leave.StatusCancelled:
		subject = fmt.Sprintf("Leave Request Cancelled: %s (%d)", event.EmployeeName, event.LeaveID)
		approverIntro = "Leave Request Cancellation Notification:\n\nThe following leave request has been cancelled."
		employeeIntro = "Leave Request Cancellation Confirmation:\n\nYour leave request has been cancelled."
	default:
		return nil, fmt.Errorf("unknown leave status: %s", event.Status)
	}

	return []Message{
		{
			Recipient: approverEmail,
			Subject:   subject,
			Body:      approverIntro + "\n\n" + details,
		},
		{
			Recipient: employeeEmail,
			Subject:   subject,
			Body:      employeeIntro + "\n\n" + details,
		},
	}, nil
}
