package leave

type ApplyLeaveRequest struct {
	EmployeeID int64  `json:"employee_id" binding:"required,gt=0"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	LeaveType  string `json:"leave_type" binding:"required"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

// CancelLeaveRequest identifies the target either by leave_id directly or by
// the (employee_id, leave_type, start_date) tuple.
type CancelLeaveRequest struct {
	LeaveID    *int64  `json:"leave_id"`
	EmployeeID *int64  `json:"employee_id"`
	LeaveType  *string `json:"leave_type"`
	StartDate  *string `json:"start_date"`
}

type ApplyLeaveResponse struct {
	LeaveID          int64  `json:"leave_id"`
	Status           string `json:"status"`
	Duration         int    `json:"duration"`
	LeaveType        string `json:"leave_type"`
	AvailableBalance int    `json:"available_balance"`
}

// TransitionResponse is the shared success payload for approve, reject and
// cancel. NewBalance is present only when the transition moved the ledger.
type TransitionResponse struct {
	LeaveID         int64   `json:"leave_id"`
	Status          string  `json:"status"`
	LeaveType       string  `json:"leave_type"`
	NewBalance      *int    `json:"new_balance,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type LeaveResponse struct {
	ID                 int64   `json:"id"`
	EmployeeID         int64   `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	LeaveType          string  `json:"leave_type"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	Duration           int     `json:"duration"`
	Status             string  `json:"status"`
	RejectionReason    *string `json:"rejection_reason,omitempty"`
	AppliedAt          string  `json:"applied_at"`
	ApprovedAt         *string `json:"approved_at,omitempty"`
	RejectedAt         *string `json:"rejected_at,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	NotificationSentAt *string `json:"notification_sent_at,omitempty"`
}
