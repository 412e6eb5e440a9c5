// Package marketsearch is an in-process free-text product search engine for
// marketplace catalogs.
//
// An Engine loads the catalog, tokenizes it into an immutable snapshot and
// answers queries such as "used ultrasound texas under 500" against that
// snapshot. Retraining swaps in a new snapshot atomically; queries never see
// a partially built corpus.
//
//	eng, _ := marketsearch.New(ctx,
//	    marketsearch.WithPostgres("host=localhost dbname=marketplace sslmode=disable"),
//	)
//	defer eng.Close()
//
//	if _, err := eng.Train(ctx); err != nil { ... }
//	page, err := eng.Query(ctx, "used ultrasound texas under 500", 1, 10)
//	switch {
//	case errors.Is(err, marketsearch.ErrNoMatches):
//	    // trained, nothing matched
//	case errors.Is(err, marketsearch.ErrNotTrained):
//	    // no successful retrain yet
//	}
//
// Use WithCatalog to search a fixed slice of products without a database.
package marketsearch
