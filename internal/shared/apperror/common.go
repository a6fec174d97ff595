package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	// ErrStoreUnavailable dipakai saat backend penyimpanan tidak bisa diakses.
	// Operasi yang sedang berjalan dibatalkan utuh, tanpa partial write.
	ErrStoreUnavailable = New(
		CodeServiceUnavailable,
		"Storage backend is unavailable, please retry later",
		http.StatusServiceUnavailable,
	)
)

// RequiredField menghasilkan error "X is required" untuk field wajib yang kosong
func RequiredField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is required", field),
		http.StatusBadRequest,
	)
}

// InvalidField menghasilkan error "X is invalid"
func InvalidField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is invalid", field),
		http.StatusBadRequest,
	)
}

// WrapStore membungkus kegagalan driver database menjadi ErrStoreUnavailable
// sambil mempertahankan error asli untuk errors.Is/As.
func WrapStore(err error) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, CodeServiceUnavailable, "Storage backend is unavailable, please retry later", http.StatusServiceUnavailable)
}
