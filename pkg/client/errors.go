package client

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by APIError.Is. Use errors.Is() to check.
var (
	ErrNotTrained   = errors.New("model has not been trained")
	ErrNoMatches    = errors.New("no matches found")
	ErrInvalidQuery = errors.New("invalid query")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTrainFailed  = errors.New("training failed")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketsearch: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps service error codes to the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotTrained:
		return e.Code == "not_trained"
	case ErrNoMatches:
		return e.Code == "no_matches"
	case ErrInvalidQuery:
		return e.Code == "bad_request"
	case ErrUnauthorized:
		return e.Code == "unauthorized"
	case ErrTrainFailed:
		return e.Code == "train_failed"
	default:
		return false
	}
}
