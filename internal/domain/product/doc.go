// Package product defines the catalog row read from the backing store and the
// tokenized, immutable Record that lives in a corpus snapshot.
package product
