package employee

type CreateEmployeeRequest struct {
	ID            int64          `json:"id" binding:"required,gt=0"`
	Name          string         `json:"name" binding:"required"`
	Email         string         `json:"email" binding:"omitempty,email"`
	Department    string         `json:"department"`
	LeaveBalances map[string]int `json:"leave_balances"`
}

type EmployeeResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

type BalanceResponse struct {
	EmployeeID    int64          `json:"employee_id"`
	EmployeeName  string         `json:"employee_name"`
	Department    string         `json:"department"`
	LeaveBalances map[string]int `json:"leave_balances"`
}
