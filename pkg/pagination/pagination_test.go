package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestNewParams(t *testing.T) {
	p, err := NewParams(3, 50)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Offset()) // (3-1) * 50

	_, err = NewParams(100, MaxLimit)
	assert.NoError(t, err, "limit may equal the maximum")
}

func TestNewParams_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        string
	}{
		{name: "zero page", page: 0, limit: 10, want: "page must be at least 1"},
		{name: "negative page", page: -1, limit: 10, want: "page must be at least 1"},
		{name: "zero limit", page: 1, limit: 0, want: "limit must be between 1 and 100"},
		{name: "limit over cap", page: 1, limit: 101, want: "limit must be between 1 and 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParams(tt.page, tt.limit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPaginate_MiddlePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page := Paginate(items, Params{Page: 2, Limit: 3})

	assert.Equal(t, []int{4, 5, 6}, page.Data)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrev())
}

func TestPaginate_LastPartialPage(t *testing.T) {
	page := Paginate([]string{"a", "b", "c", "d", "e"}, Params{Page: 3, Limit: 2})

	assert.Equal(t, []string{"e"}, page.Data)
	assert.False(t, page.HasNext())
}

func TestPaginate_ExactDivision(t *testing.T) {
	page := Paginate(make([]int, 40), Params{Page: 1, Limit: 20})
	assert.Equal(t, 2, page.TotalPages)
}

func TestPaginate_PastTheEnd(t *testing.T) {
	page := Paginate([]int{1, 2}, Params{Page: 5, Limit: 10})

	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestPaginate_EmptyCollection(t *testing.T) {
	page := Paginate([]int{}, DefaultParams())

	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrev())
}

func TestPaginate_CopiesData(t *testing.T) {
	items := []int{1, 2, 3}
	page := Paginate(items, Params{Page: 1, Limit: 2})

	page.Data[0] = 99
	assert.Equal(t, 1, items[0])
}
