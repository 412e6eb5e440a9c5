package health

import "context"

// Pinger checks availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CorpusChecker reports whether a corpus snapshot is serving queries.
type CorpusChecker interface {
	Trained() bool
}
