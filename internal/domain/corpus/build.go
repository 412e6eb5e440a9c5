package corpus

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// defaultChunkSize is the number of rows tokenized per pool task.
const defaultChunkSize = 512

// Rejection describes a catalog row that could not become a record.
type Rejection struct {
	Index int
	ID    int64
	Err   error
}

// Builder turns catalog rows into records on a bounded worker pool.
type Builder struct {
	pool      *ants.Pool
	chunkSize int
}

// NewBuilder creates a builder backed by a pool of the given size.
// workers <= 1 builds on the calling goroutine.
func NewBuilder(workers int) (*Builder, error) {
	b := &Builder{chunkSize: defaultChunkSize}
	if workers <= 1 {
		return b, nil
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create build pool: %w", err)
	}
	b.pool = pool
	return b, nil
}

// Release stops the worker pool.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Build validates and tokenizes rows. Invalid rows are rejected individually;
// accepted records keep catalog order.
func (b *Builder) Build(ctx context.Context, rows []product.Row) ([]product.Record, []Rejection, error) {
	slots := make([]product.Record, len(rows))
	errs := make([]error, len(rows))

	if b.pool == nil || len(rows) <= b.chunkSize {
		buildRange(rows, slots, errs, 0, len(rows))
	} else if err := b.buildParallel(ctx, rows, slots, errs); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("build corpus: %w", err)
	}

	records := make([]product.Record, 0, len(rows))
	var rejected []Rejection
	for i := range rows {
		if errs[i] != nil {
			rejected = append(rejected, Rejection{Index: i, ID: rows[i].ID, Err: errs[i]})
			continue
		}
		records = append(records, slots[i])
	}
	return records, rejected, nil
}

func (b *Builder) buildParallel(ctx context.Context, rows []product.Row, slots []product.Record, errs []error) error {
	var wg sync.WaitGroup
	for start := 0; start < len(rows); start += b.chunkSize {
		end := min(start+b.chunkSize, len(rows))
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			buildRange(rows, slots, errs, start, end)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit build chunk: %w", err)
		}
	}
	wg.Wait()
	return nil
}

func buildRange(rows []product.Row, slots []product.Record, errs []error, start, end int) {
	for i := start; i < end; i++ {
		slots[i], errs[i] = product.New(&rows[i])
	}
}
