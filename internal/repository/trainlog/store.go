// Package trainlog records the latest retrain outcome in a Valkey hash so every
// replica reports the same last train.
package trainlog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
)

var lastTrainKey = domain.KeyPrefix + "train:last"

// store is the consumer interface for the train log (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Store persists domain.TrainReport as a hash.
type Store struct {
	store store
}

// New creates a train log store.
func New(s store) *Store {
	return &Store{store: s}
}

// Record overwrites the last train entry. Every field is written so a success
// clears the error left by a previous failure.
func (s *Store) Record(ctx context.Context, report *domain.TrainReport) error {
	fields := map[string]string{
		"status":      string(report.Status),
		"version":     strconv.FormatUint(report.Version, 10),
		"records":     strconv.Itoa(report.Records),
		"rejected":    strconv.Itoa(report.Rejected),
		"fingerprint": report.Fingerprint,
		"trained_at":  report.TrainedAt.UTC().Format(time.RFC3339Nano),
		"duration_ms": strconv.FormatInt(report.Duration.Milliseconds(), 10),
		"error":       report.Error,
	}
	if err := s.store.HSet(ctx, lastTrainKey, fields); err != nil {
		return fmt.Errorf("train log HSET: %w", err)
	}
	return nil
}

// Last returns the most recent entry, or domain.ErrNotTrained if none was recorded.
func (s *Store) Last(ctx context.Context) (domain.TrainReport, error) {
	m, err := s.store.HGetAll(ctx, lastTrainKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.TrainReport{}, fmt.Errorf("train log: %w", domain.ErrNotTrained)
		}
		return domain.TrainReport{}, fmt.Errorf("train log HGETALL: %w", err)
	}
	return parseReport(m)
}

func parseReport(m map[string]string) (domain.TrainReport, error) {
	r := domain.TrainReport{
		Status:      domain.TrainStatus(m["status"]),
		Fingerprint: m["fingerprint"],
		Error:       m["error"],
	}

	var err error
	if r.Version, err = strconv.ParseUint(m["version"], 10, 64); err != nil {
		return domain.TrainReport{}, fmt.Errorf("train log version: %w", err)
	}
	if r.Records, err = strconv.Atoi(m["records"]); err != nil {
		return domain.TrainReport{}, fmt.Errorf("train log records: %w", err)
	}
	if r.Rejected, err = strconv.Atoi(m["rejected"]); err != nil {
		return domain.TrainReport{}, fmt.Errorf("train log rejected: %w", err)
	}
	if r.TrainedAt, err = time.Parse(time.RFC3339Nano, m["trained_at"]); err != nil {
		return domain.TrainReport{}, fmt.Errorf("train log trained_at: %w", err)
	}
	ms, err := strconv.ParseInt(m["duration_ms"], 10, 64)
	if err != nil {
		return domain.TrainReport{}, fmt.Errorf("train log duration_ms: %w", err)
	}
	r.Duration = time.Duration(ms) * time.Millisecond
	return r, nil
}
