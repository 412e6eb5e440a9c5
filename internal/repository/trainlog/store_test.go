package trainlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
)

type mockHashStore struct {
	hashes map[string]map[string]string
	err    error
}

func (m *mockHashStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.err != nil {
		return m.err
	}
	if m.hashes == nil {
		m.hashes = make(map[string]map[string]string)
	}
	h := m.hashes[key]
	if h == nil {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func TestRecordAndLast(t *testing.T) {
	ms := &mockHashStore{}
	s := New(ms)
	ctx := context.Background()

	trainedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	failed := domain.TrainReport{
		Status: domain.TrainFailed, TrainedAt: trainedAt,
		Duration: 40 * time.Millisecond, Error: "retrain source failure: catalog is empty",
	}
	if err := s.Record(ctx, &failed); err != nil {
		t.Fatalf("Record: %v", err)
	}

	ok := domain.TrainReport{
		Status: domain.TrainOK, Version: 3, Records: 120, Rejected: 2,
		Fingerprint: "abc123", TrainedAt: trainedAt.Add(time.Minute), Duration: 1500 * time.Millisecond,
	}
	if err := s.Record(ctx, &ok); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if got.Status != domain.TrainOK || got.Version != 3 || got.Records != 120 || got.Rejected != 2 {
		t.Errorf("unexpected report: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("success should clear the previous error, got %q", got.Error)
	}
	if !got.TrainedAt.Equal(ok.TrainedAt) || got.Duration != ok.Duration {
		t.Errorf("TrainedAt/Duration = %v/%v", got.TrainedAt, got.Duration)
	}
}

func TestLast_Empty(t *testing.T) {
	s := New(&mockHashStore{})
	_, err := s.Last(context.Background())
	if !errors.Is(err, domain.ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}
}

func TestLast_Corrupt(t *testing.T) {
	ms := &mockHashStore{hashes: map[string]map[string]string{
		lastTrainKey: {"status": "ok", "version": "x"},
	}}
	if _, err := New(ms).Last(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestStoreErrors(t *testing.T) {
	ms := &mockHashStore{err: errors.New("READONLY")}
	s := New(ms)
	if err := s.Record(context.Background(), &domain.TrainReport{}); err == nil {
		t.Error("expected HSET error")
	}
	if _, err := s.Last(context.Background()); err == nil || errors.Is(err, domain.ErrNotTrained) {
		t.Errorf("expected HGETALL error, got %v", err)
	}
}
