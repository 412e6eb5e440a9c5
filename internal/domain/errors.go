package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTrained signals a query against a corpus that has never been trained successfully.
	ErrNotTrained = errors.New("model has not been trained")
	// ErrNoMatches signals a trained corpus where no record satisfies the query.
	ErrNoMatches = errors.New("no matches found")
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRetrainSource signals that the catalog could not supply training data.
	ErrRetrainSource = errors.New("retrain source failure")
	// ErrEmptyCatalog signals a catalog with no usable rows. Wraps ErrRetrainSource.
	ErrEmptyCatalog = fmt.Errorf("%w: catalog is empty", ErrRetrainSource)
)

// RejectedRowsError reports how many catalog rows were dropped during a retrain
// that produced no usable records.
type RejectedRowsError struct {
	Rejected int
}

func (e *RejectedRowsError) Error() string {
	return fmt.Sprintf("%s: all %d rows rejected", ErrEmptyCatalog.Error(), e.Rejected)
}

func (e *RejectedRowsError) Unwrap() error { return ErrEmptyCatalog }

// NewRejectedRows creates an all-rows-rejected error.
func NewRejectedRows(rejected int) error {
	return &RejectedRowsError{Rejected: rejected}
}
