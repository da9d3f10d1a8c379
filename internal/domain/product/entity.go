package product

import (
	"fmt"
	"strings"
)

// Product is one tracked product with its derived search queries.
// Immutable for the duration of a run.
type Product struct {
	ID          int64
	Name        string
	SearchTerms []string // first element is the canonical name, the rest are aliases
	SocialQuery string
	NewsQuery   string
	Ticker      string // empty when the parent company is not listed
}

// News results for snack brands drown in financial coverage of the parent
// company, so the news query excludes the market vocabulary outright.
const newsExclusions = "NOT stock NOT shares NOT earnings NOT nasdaq NOT nyse"

// New builds a Product with its social and news queries derived from the
// search terms. Queries are pure functions of the terms.
func New(id int64, name string, searchTerms []string, ticker string) Product {
	return Product{
		ID:          id,
		Name:        name,
		SearchTerms: searchTerms,
		SocialQuery: BuildSocialQuery(searchTerms),
		NewsQuery:   BuildNewsQuery(searchTerms),
		Ticker:      ticker,
	}
}

// BuildSocialQuery joins the quoted search terms with boolean OR
func BuildSocialQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, fmt.Sprintf("%q", term))
	}
	return strings.Join(quoted, " OR ")
}

// BuildNewsQuery wraps the OR query in parentheses and appends the
// financial-news exclusions
func BuildNewsQuery(terms []string) string {
	return fmt.Sprintf("(%s) %s", BuildSocialQuery(terms), newsExclusions)
}
