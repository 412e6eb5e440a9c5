package domain

import "time"

// TrainStatus is the outcome of a retrain.
type TrainStatus string

// Train status constants.
const (
	TrainOK     TrainStatus = "ok"
	TrainFailed TrainStatus = "failed"
)

// TrainReport summarizes one retrain attempt.
// Version and Fingerprint are zero when the attempt failed.
type TrainReport struct {
	Status      TrainStatus
	Version     uint64
	Records     int
	Rejected    int
	Fingerprint string
	TrainedAt   time.Time
	Duration    time.Duration
	Error       string
}
