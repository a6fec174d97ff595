package notification

type NotificationStatusResponse struct {
	LeaveID          int64   `json:"leave_id"`
	NotificationSent bool    `json:"notification_sent"`
	SentAt           *string `json:"sent_at,omitempty"`
}

type ResendResponse struct {
	LeaveID int64  `json:"leave_id"`
	Status  string `json:"status"`
}
