package usecase

import (
	"errors"
	"net/http"
)

// エラーの種類。errors.Is で判定できる
var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("empty cart")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

// handlerでそのままレスポンスにできるエラー
type HTTPError struct {
	Status  int
	Message string
	Kind    error
	// ログ用。レスポンスには出さない
	Cause error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// statusからKindを決める
func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Message: msg, Kind: kindOf(status)}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

func notFound(msg string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, msg)
}

func validation(msg string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, msg)
}

func emptyCart() *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: "cart is empty", Kind: ErrEmptyCart}
}

func invalidTransition(msg string) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: msg, Kind: ErrInvalidTransition}
}

func unauthorized() *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

// DBエラー。原因はログにだけ出す
func dbError(cause error) *HTTPError {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Kind: ErrInternal, Cause: cause}
}

func kindOf(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrInternal
	}
}
