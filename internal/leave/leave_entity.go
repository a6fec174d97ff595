package leave

import "time"

// LeaveRequest is immutable after apply except for status, the timestamp of
// whichever transition fires, the rejection reason and the notification marker.
type LeaveRequest struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	EmployeeID   int64     `gorm:"not null;index:idx_leave_requests_tuple"`
	EmployeeName string    `gorm:"type:varchar(120);not null"`
	LeaveType    string    `gorm:"type:varchar(40);not null;index:idx_leave_requests_tuple"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_requests_tuple"`
	EndDate      time.Time `gorm:"type:date;not null"`
	Duration     int       `gorm:"not null;default:1"`

	Status          string  `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	RejectionReason *string `gorm:"type:text"`

	AppliedAt          time.Time `gorm:"not null"`
	ApprovedAt         *time.Time
	RejectedAt         *time.Time
	CancelledAt        *time.Time
	NotificationSentAt *time.Time
}
