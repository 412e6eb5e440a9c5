// Package match filters corpus records against a parsed query.
package match

import (
	"github.com/kailas-cloud/marketsearch/internal/domain/product"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
)

// Match returns the records satisfying every clause of Matches, in corpus order.
// The result never aliases records.
func Match(records []product.Record, q *query.Parsed) []product.Record {
	out := make([]product.Record, 0)
	for i := range records {
		if Matches(&records[i], q) {
			out = append(out, records[i])
		}
	}
	return out
}

// Matches reports whether r passes the condition, sales area, name and price clauses.
// Area and name are each an OR over their tokens, and both are required.
func Matches(r *product.Record, q *query.Parsed) bool {
	return conditionMatches(r, q) &&
		q.HasAny(r.SalesAreaTokens()) &&
		q.HasAny(r.NameTokens()) &&
		q.Price().Allows(r.Price())
}

// conditionMatches passes untagged records and queries that name no condition.
func conditionMatches(r *product.Record, q *query.Parsed) bool {
	if r.Condition() == product.ConditionNone || !q.MentionsCondition() {
		return true
	}
	return q.MentionsConditionTag(r.Condition())
}
