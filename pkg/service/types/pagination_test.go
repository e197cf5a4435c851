package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Pagination(t *testing.T) {
	t.Run("Should walk pages clamped to the total", func(t *testing.T) {
		p := NewDefaultPagination()
		p.Load(0, 2)

		windows := [][2]uint64{}
		for {
			start, end, ok := p.Range(5)
			if !ok {
				break
			}
			windows = append(windows, [2]uint64{start, end})
			p.Next()
		}
		assert.Equal(t, [][2]uint64{{0, 2}, {2, 4}, {4, 5}}, windows)
	})
	t.Run("Should keep the default page size when loading 0", func(t *testing.T) {
		p := NewDefaultPagination()
		p.Load(3, 0)
		assert.Equal(t, uint64(3), p.Page)
		assert.Equal(t, uint64(DefaultPageSize), p.PageSize)
	})
	t.Run("Should yield nothing for an empty log", func(t *testing.T) {
		_, _, ok := NewDefaultPagination().Range(0)
		assert.False(t, ok)
	})
}
