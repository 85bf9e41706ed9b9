// Package query holds the search, sort and pagination helpers shared by the
// list endpoints.
package query

import (
	"math"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params is the normalized form of ?page=&size=&sort=&order=&q=.
type Params struct {
	Page   int
	Size   int
	Sort   string
	Order  string
	Search string
}

// Sortable maps public sort keys onto SQL column expressions. Only keys in
// the map can reach an ORDER BY clause.
type Sortable map[string]string

// Normalize clamps paging values and lowercases sort direction.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))
	if p.Order != "asc" {
		p.Order = "desc"
	}
	p.Sort = strings.TrimSpace(p.Sort)
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Offset is the number of rows to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// OrderBy resolves the sort key against columns, falling back to the column
// registered under fallback. The id tiebreaker keeps pages stable.
func (p Params) OrderBy(columns Sortable, fallback, tiebreaker string) string {
	column, ok := columns[p.Sort]
	if !ok {
		column = columns[fallback]
	}
	direction := "DESC"
	if p.Order == "asc" {
		direction = "ASC"
	}
	clause := column + " " + direction
	if tiebreaker != "" {
		clause += ", " + tiebreaker + " " + direction
	}
	return clause
}

// HasSearch reports whether a search term was supplied.
func (p Params) HasSearch() bool {
	return p.Search != ""
}

// LikePattern returns a lowercased %term% pattern with LIKE wildcards
// escaped. Use it with `LIKE ? ESCAPE '\'`.
func (p Params) LikePattern() string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(p.Search)) + "%"
}

// Paginate is a gorm scope applying offset and limit.
func (p Params) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}

// Meta is the pagination block returned next to list payloads.
type Meta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewMeta computes page counts for total rows.
func NewMeta(p Params, total int64) Meta {
	totalPages := int(math.Ceil(float64(total) / float64(p.Size)))
	return Meta{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Size,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// Page is one page of results.
type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// NewPage wraps items; a nil slice is returned as empty so it encodes as [].
func NewPage[T any](items []T, p Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: NewMeta(p, total)}
}
