// Package corpus holds the trained, in-memory product corpus and rebuilds it from catalog rows.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// Snapshot is one immutable generation of the corpus.
type Snapshot struct {
	version     uint64
	records     []product.Record
	trainedAt   time.Time
	fingerprint string
}

// Version returns the per-process generation number (first snapshot is 1).
func (s *Snapshot) Version() uint64 { return s.version }

// Records returns the records in catalog order. The slice is shared; do not modify.
func (s *Snapshot) Records() []product.Record { return s.records }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// TrainedAt returns when the snapshot was installed.
func (s *Snapshot) TrainedAt() time.Time { return s.trainedAt }

// Fingerprint returns a content hash of the ordered records.
// Two snapshots built from the same catalog share a fingerprint.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// Store publishes the current snapshot. Readers never block; Swap replaces the
// whole snapshot with one atomic pointer store.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore creates an empty (untrained) store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the installed snapshot, or false if none was ever installed.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Swap installs records as the next snapshot and returns it.
// The records slice is owned by the store afterwards.
func (s *Store) Swap(records []product.Record, trainedAt time.Time) *Snapshot {
	snap := &Snapshot{
		version:     s.version.Add(1),
		records:     records,
		trainedAt:   trainedAt,
		fingerprint: Fingerprint(records),
	}
	s.current.Store(snap)
	return snap
}

// Fingerprint hashes every matchable and projected field of records in order.
func Fingerprint(records []product.Record) string {
	h := sha256.New()
	for i := range records {
		r := &records[i]
		fmt.Fprintf(h, "%d\x1f%s\x1f%s\x1f%s\x1f%s\x1f%d\x1f%s\x1f%s\x1f%s\x1f%d\x1f%s\x1f%s\x1f%s\x1f%g\x1e",
			r.ID(), r.Name(), strings.Join(r.NameTokens(), " "), r.Brand(), r.Model(), r.Year(),
			r.CategoryName(), r.SubcategoryName(), r.Description(), r.SupplierID(), r.ImageURL(),
			r.Condition(), r.SalesArea(), r.Price())
	}
	return hex.EncodeToString(h.Sum(nil))
}
