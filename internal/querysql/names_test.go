package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator_Unique(t *testing.T) {
	a := NewAllocator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		for _, field := range []string{"age", "age_1", "a.b", "a_b", "1x", ""} {
			name := a.Allocate(field)
			assert.False(t, seen[name], "duplicate %s", name)
			seen[name] = true
		}
	}
	assert.Equal(t, 600, a.Issued())
}

func TestAllocator_Names(t *testing.T) {
	a := NewAllocator()
	assert.Equal(t, "age_1", a.Allocate("age"))
	assert.Equal(t, "age_2", a.Allocate("age"))
	assert.Equal(t, "owner_name_3", a.Allocate("owner.name"))
	assert.Equal(t, "p9lives_4", a.Allocate("9lives"))
	assert.Equal(t, "p_5", a.Allocate(""))

	// A fresh allocator starts a fresh scope.
	assert.Equal(t, "age_1", NewAllocator().Allocate("age"))
}
