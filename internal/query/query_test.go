package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, 0, p.Offset())
}

func TestNormalizeClampsSize(t *testing.T) {
	p := Params{Page: 3, Size: 1000, Order: " ASC ", Search: "  sword "}.Normalize()

	assert.Equal(t, MaxPageSize, p.Size)
	assert.Equal(t, "asc", p.Order)
	assert.Equal(t, "sword", p.Search)
	assert.Equal(t, 200, p.Offset())
}

func TestOrderByUsesWhitelist(t *testing.T) {
	columns := Sortable{"price": "o.price", "published_at": "o.published_at"}

	p := Params{Sort: "price", Order: "asc"}.Normalize()
	assert.Equal(t, "o.price ASC, o.id ASC", p.OrderBy(columns, "published_at", "o.id"))

	p = Params{Sort: "password; DROP TABLE users"}.Normalize()
	assert.Equal(t, "o.published_at DESC", p.OrderBy(columns, "published_at", ""))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	p := Params{Search: "50%_Off"}.Normalize()

	assert.True(t, p.HasSearch())
	assert.Equal(t, `%50\%\_off%`, p.LikePattern())
}

func TestNewMeta(t *testing.T) {
	p := Params{Page: 2, Size: 10}.Normalize()
	meta := NewMeta(p, 25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPreviousPage)

	last := NewMeta(Params{Page: 3, Size: 10}.Normalize(), 25)
	assert.False(t, last.HasNextPage)
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[string](nil, Params{}.Normalize(), 0)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Meta.TotalPages)
}
