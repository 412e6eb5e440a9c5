package domain

// KeyPrefix namespaces every key the service writes to Valkey/Redis.
const KeyPrefix = "marketsearch:"

// SearchConfig holds internal search settings, not exposed to clients.
type SearchConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxQueryLength  int
	BuildWorkers    int
}

// DefaultSearchConfig returns the defaults used by the marketplace frontend.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		MaxQueryLength:  4096,
		BuildWorkers:    4,
	}
}
