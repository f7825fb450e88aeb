package models

import (
	"fmt"
	"strings"
	"time"
)

// CatalogQuery describes a conjunction of predicates against the catalog:
// category equality, label presence/absence, and a creation-date lower bound,
// together with a result cap. Results are always requested newest first.
type CatalogQuery struct {
	Category      string    `yaml:"category"`
	IncludeLabels []string  `yaml:"includeLabels"`
	ExcludeLabels []string  `yaml:"excludeLabels"`
	CreatedAfter  time.Time `yaml:"createdAfter"`
	Count         int       `yaml:"count"`
}

// String renders the query in the catalog's search syntax.
func (q CatalogQuery) String() string {
	var terms []string
	if q.Category != "" {
		terms = append(terms, fmt.Sprintf("category: %s", q.Category))
	}
	for _, l := range q.IncludeLabels {
		terms = append(terms, fmt.Sprintf("label: %s", l))
	}
	for _, l := range q.ExcludeLabels {
		terms = append(terms, fmt.Sprintf("~label: %s", l))
	}
	if !q.CreatedAfter.IsZero() {
		terms = append(terms, fmt.Sprintf("created: %s ..", q.CreatedAfter.Format("2006-01-02")))
	}
	return strings.Join(terms, " ")
}

// Simplified returns the reduced-predicate form of the query used as a
// fallback when the full query is rejected: category and cap only.
func (q CatalogQuery) Simplified() CatalogQuery {
	return CatalogQuery{
		Category: q.Category,
		Count:    q.Count,
	}
}

// IsSimplified reports whether the query already carries no optional
// predicates, in which case a simplified retry would repeat the same request.
func (q CatalogQuery) IsSimplified() bool {
	return len(q.IncludeLabels) == 0 && len(q.ExcludeLabels) == 0 && q.CreatedAfter.IsZero()
}
