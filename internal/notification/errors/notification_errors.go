package notificationerrors

import (
	"net/http"

	"go-lms/internal/shared/apperror"
)

var (
	// ErrDispatchFailed is reported to the caller of notify/resend but never
	// rolls back the transition that triggered the notification.
	ErrDispatchFailed = apperror.New(
		apperror.CodeDispatchError,
		"notification dispatch failed",
		http.StatusBadGateway,
	)
)
