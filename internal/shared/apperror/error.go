package apperror

import "fmt"

// AppError membawa kode stabil plus status HTTP, jadi handler tinggal
// meneruskannya ke response envelope tanpa mapping tambahan.
type AppError struct {
	Code       string // stable machine code (e.g., INVALID_STATE)
	Message    string // safe to show to API clients
	HTTPStatus int
	Err        error // original cause, optional
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap supaya errors.Is/As tetap bisa menembus ke penyebab aslinya.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New membuat AppError tanpa membungkus error lain.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap membungkus err dengan kode dan status; nil in, nil out.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
