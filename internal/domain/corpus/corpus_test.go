package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

func rows(n int) []product.Row {
	out := make([]product.Row, n)
	for i := range out {
		price := float64(i)
		out[i] = product.Row{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("Scanner %d", i+1),
			SalesArea: "Texas",
			Condition: "new",
			Price:     &price,
		}
	}
	return out
}

func TestStore_EmptyUntilSwap(t *testing.T) {
	s := NewStore()
	if _, ok := s.Current(); ok {
		t.Fatal("new store must be untrained")
	}

	b, _ := NewBuilder(1)
	recs, _, err := b.Build(context.Background(), rows(3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	snap := s.Swap(recs, time.Unix(100, 0))

	cur, ok := s.Current()
	if !ok || cur != snap {
		t.Fatal("Current should return the swapped snapshot")
	}
	if cur.Version() != 1 || cur.Len() != 3 {
		t.Errorf("Version/Len = %d/%d, want 1/3", cur.Version(), cur.Len())
	}
	if !cur.TrainedAt().Equal(time.Unix(100, 0)) {
		t.Errorf("TrainedAt = %v", cur.TrainedAt())
	}

	next := s.Swap(recs, time.Unix(200, 0))
	if next.Version() != 2 {
		t.Errorf("second Version = %d, want 2", next.Version())
	}
	if snap.Len() != 3 || snap.Version() != 1 {
		t.Error("previous snapshot must stay intact after swap")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	b, err := NewBuilder(4)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	defer b.Release()

	src := rows(2000)
	first, _, err := b.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, _, err := b.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if Fingerprint(first) != Fingerprint(second) {
		t.Error("rebuilding unchanged rows must yield the same fingerprint")
	}
	for i := range first {
		if first[i].ID() != int64(i+1) {
			t.Fatalf("record %d has ID %d, order not preserved", i, first[i].ID())
		}
	}
}

func TestBuild_ParallelMatchesSerial(t *testing.T) {
	src := rows(1500)
	src[700].Name = ""
	src[1400].Price = nil

	serial, _ := NewBuilder(1)
	parallel, _ := NewBuilder(8)
	defer parallel.Release()

	a, rejA, err := serial.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("serial Build: %v", err)
	}
	b, rejB, err := parallel.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("parallel Build: %v", err)
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("serial and parallel builds differ")
	}
	if len(rejA) != 2 || len(rejB) != 2 {
		t.Fatalf("rejections = %d/%d, want 2/2", len(rejA), len(rejB))
	}
	if rejB[0].Index != 700 || rejB[0].ID != 701 || rejB[1].Index != 1400 {
		t.Errorf("unexpected rejections: %+v", rejB)
	}
}

func TestBuild_RejectsIndividually(t *testing.T) {
	src := rows(3)
	src[1].SalesArea = "   "

	b, _ := NewBuilder(1)
	recs, rejected, err := b.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(recs) != 2 || recs[0].ID() != 1 || recs[1].ID() != 3 {
		t.Errorf("unexpected records: %d", len(recs))
	}
	if len(rejected) != 1 || rejected[0].ID != 2 || rejected[0].Err == nil {
		t.Errorf("unexpected rejections: %+v", rejected)
	}
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _ := NewBuilder(2)
	defer b.Release()
	_, _, err := b.Build(ctx, rows(10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	b, _ := NewBuilder(1)
	src := rows(2)
	a, _, _ := b.Build(context.Background(), src)

	price := 999.0
	src[1].Price = &price
	c, _, _ := b.Build(context.Background(), src)

	if Fingerprint(a) == Fingerprint(c) {
		t.Error("fingerprint must change when a price changes")
	}
	if Fingerprint(nil) == Fingerprint(a) {
		t.Error("empty corpus must not share a fingerprint with a populated one")
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	b, _ := NewBuilder(1)
	small, _, _ := b.Build(context.Background(), rows(1))
	large, _, _ := b.Build(context.Background(), rows(50))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				if snap, ok := s.Current(); ok && snap.Len() != 1 && snap.Len() != 50 {
					t.Errorf("observed partial snapshot of %d records", snap.Len())
					return
				}
			}
		}()
	}
	for i := range 100 {
		if i%2 == 0 {
			s.Swap(small, time.Now())
		} else {
			s.Swap(large, time.Now())
		}
	}
	wg.Wait()
}
