package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DiffFollowing(t *testing.T) {
	a := "0x000000000000000000000000000000000000000a"
	b := "0x000000000000000000000000000000000000000b"
	c := "0x000000000000000000000000000000000000000c"

	t.Run("Should report added and removed addresses", func(t *testing.T) {
		added, removed := DiffFollowing([]string{a, b}, []string{b, c})
		assert.Equal(t, []string{c}, added)
		assert.Equal(t, []string{a}, removed)
	})
	t.Run("Should treat a nil previous set as empty", func(t *testing.T) {
		added, removed := DiffFollowing(nil, []string{a})
		assert.Equal(t, []string{a}, added)
		assert.Empty(t, removed)
	})
	t.Run("Should report nothing for identical sets", func(t *testing.T) {
		added, removed := DiffFollowing([]string{a, b}, []string{b, a})
		assert.Empty(t, added)
		assert.Empty(t, removed)
	})
}
