package links

import (
	"testing"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

const base = "http://localhost:8080/recipes"

func TestPage(t *testing.T) {
	tests := []struct {
		name     string
		skip     int
		limit    int
		total    int64
		expected model.Links
	}{
		{
			name:  "first page of 25",
			skip:  0,
			limit: 10,
			total: 25,
			expected: model.Links{
				RelCurrent: {Href: base + "?skip=0&limit=10"},
				RelFirst:   {Href: base + "?skip=0&limit=10"},
				RelLast:    {Href: base + "?skip=20&limit=10"},
				RelNext:    {Href: base + "?skip=10&limit=10"},
			},
		},
		{
			name:  "middle page of 25",
			skip:  10,
			limit: 10,
			total: 25,
			expected: model.Links{
				RelCurrent:  {Href: base + "?skip=10&limit=10"},
				RelFirst:    {Href: base + "?skip=0&limit=10"},
				RelLast:     {Href: base + "?skip=20&limit=10"},
				RelNext:     {Href: base + "?skip=20&limit=10"},
				RelPrevious: {Href: base + "?skip=0&limit=10"},
			},
		},
		{
			name:  "last page of 25",
			skip:  20,
			limit: 10,
			total: 25,
			expected: model.Links{
				RelCurrent:  {Href: base + "?skip=20&limit=10"},
				RelFirst:    {Href: base + "?skip=0&limit=10"},
				RelLast:     {Href: base + "?skip=20&limit=10"},
				RelPrevious: {Href: base + "?skip=10&limit=10"},
			},
		},
		{
			name:  "empty collection",
			skip:  0,
			limit: 10,
			total: 0,
			expected: model.Links{
				RelCurrent: {Href: base + "?skip=0&limit=10"},
				RelFirst:   {Href: base + "?skip=0&limit=10"},
				RelLast:    {Href: base + "?skip=0&limit=10"},
			},
		},
		{
			name:  "previous never goes negative",
			skip:  3,
			limit: 10,
			total: 25,
			expected: model.Links{
				RelCurrent:  {Href: base + "?skip=3&limit=10"},
				RelFirst:    {Href: base + "?skip=0&limit=10"},
				RelLast:     {Href: base + "?skip=20&limit=10"},
				RelNext:     {Href: base + "?skip=13&limit=10"},
				RelPrevious: {Href: base + "?skip=0&limit=10"},
			},
		},
		{
			name:  "exact multiple has no trailing empty page",
			skip:  10,
			limit: 10,
			total: 20,
			expected: model.Links{
				RelCurrent:  {Href: base + "?skip=10&limit=10"},
				RelFirst:    {Href: base + "?skip=0&limit=10"},
				RelLast:     {Href: base + "?skip=10&limit=10"},
				RelPrevious: {Href: base + "?skip=0&limit=10"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Page(base, tt.skip, tt.limit, tt.total))
		})
	}
}

func TestPageStripsQuery(t *testing.T) {
	got := Page(base+"?skip=40&limit=5&foo=bar", 0, 5, 3)
	assert.Equal(t, base+"?skip=0&limit=5", got[RelCurrent].Href)
}

func TestLastSkip(t *testing.T) {
	assert.Equal(t, 0, LastSkip(10, 0))
	assert.Equal(t, 0, LastSkip(0, 25))
	assert.Equal(t, 0, LastSkip(10, 1))
	assert.Equal(t, 0, LastSkip(10, 10))
	assert.Equal(t, 10, LastSkip(10, 11))
	assert.Equal(t, 20, LastSkip(10, 25))
}

func TestRecipe(t *testing.T) {
	got := Recipe(7)
	assert.Len(t, got, 3)
	assert.Equal(t, model.Link{Href: "/recipes/id/7"}, got[RelSelf])
	assert.Equal(t, model.Link{Href: "/recipes/id/7", Method: "PUT"}, got[RelUpdate])
	assert.Equal(t, model.Link{Href: "/recipes/id/7", Method: "DELETE"}, got[RelDelete])
}
