package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork      = errors.New("network error")
	ErrParse        = errors.New("malformed response")
	ErrStorage      = errors.New("storage error")
	ErrInvalidQuery = errors.New("invalid query")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

var (
	ErrRecordNotFound = errors.New("history record not found")
)

// StatusError - ответ сервера вне 200..299.
// Отдельный тип, потому что код статуса нужен вызывающему
// (4xx и 5xx показываются юзеру по-разному).
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// IsStatusError reports whether err carries an HTTP status and returns the code.
func IsStatusError(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
