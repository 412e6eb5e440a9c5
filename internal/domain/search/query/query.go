// Package query turns raw search text into tokens and a structured price constraint.
package query

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
	"github.com/kailas-cloud/marketsearch/internal/domain/token"
)

// Extractor derives a price constraint from raw query text.
// Implementations never fail: unparsable input yields Unconstrained bounds.
type Extractor interface {
	Extract(ctx context.Context, text string) PriceConstraint
}

// Rules is the pattern-based Extractor.
type Rules struct{}

// Name identifies the extractor in cache keys.
func (Rules) Name() string { return "rules" }

// Extract implements Extractor.
func (Rules) Extract(_ context.Context, text string) PriceConstraint {
	return ExtractPriceConstraint(text)
}

// Parsed is a query ready for matching.
type Parsed struct {
	raw        string
	tokens     []string
	tokenSet   map[string]struct{}
	conditions map[product.Condition]struct{}
	price      PriceConstraint
}

// Parse tokenizes text and pairs it with an already extracted price constraint.
func Parse(text string, price PriceConstraint) Parsed {
	tokens := token.Tokenize(text)
	set := token.Set(tokens)

	conds := make(map[product.Condition]struct{}, len(product.Conditions))
	for _, c := range product.Conditions {
		if _, ok := set[string(c)]; ok {
			conds[c] = struct{}{}
		}
	}

	return Parsed{
		raw:        text,
		tokens:     tokens,
		tokenSet:   set,
		conditions: conds,
		price:      price,
	}
}

// Raw returns the original query text.
func (p *Parsed) Raw() string { return p.raw }

// Tokens returns the query tokens in order.
func (p *Parsed) Tokens() []string { return p.tokens }

// Price returns the price constraint.
func (p *Parsed) Price() PriceConstraint { return p.price }

// Has reports whether tok is one of the query tokens.
func (p *Parsed) Has(tok string) bool {
	_, ok := p.tokenSet[tok]
	return ok
}

// HasAny reports whether any of toks is a query token.
func (p *Parsed) HasAny(toks []string) bool {
	for _, t := range toks {
		if p.Has(t) {
			return true
		}
	}
	return false
}

// MentionsCondition reports whether the query names any condition tag.
func (p *Parsed) MentionsCondition() bool { return len(p.conditions) > 0 }

// MentionsConditionTag reports whether the query names the given tag.
func (p *Parsed) MentionsConditionTag(c product.Condition) bool {
	_, ok := p.conditions[c]
	return ok
}
