package leaveerrors

import (
	"fmt"
	"net/http"
	"strings"

	"go-lms/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusBadRequest,
	)
	ErrCancelTargetRequired = apperror.New(
		apperror.CodeInvalidInput,
		"either leave_id or employee_id, leave_type and start_date must be provided",
		http.StatusBadRequest,
	)
	ErrStatusTargetRequired = apperror.New(
		apperror.CodeInvalidInput,
		"either employee_id or leave_id must be provided",
		http.StatusBadRequest,
	)
)

// AlreadyInState reports a transition attempted on a request that has left the
// expected source state, naming the state it is actually in.
func AlreadyInState(status string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("leave request is already %s", strings.ToLower(status)),
		http.StatusBadRequest,
	)
}
