package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorIsStable(t *testing.T) {
	gen := NewIDGenerator("breakdown")

	a := gen.Generate("Busan", "Qingdao", "OSH", "agentA")
	b := gen.Generate("Busan", "Qingdao", "OSH", "agentA")
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 16)

	// Separators keep part boundaries significant
	assert.NotEqual(t, gen.Generate("ab", "c"), gen.Generate("a", "bc"))
	assert.NotEqual(t, a, NewIDGenerator("quote").Generate("Busan", "Qingdao", "OSH", "agentA"))
}

func TestHashJSON(t *testing.T) {
	h1, err := HashJSON(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	h2, err := HashJSON(map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1.Hex(), 64)
}

func TestSortSliceIsStable(t *testing.T) {
	type row struct {
		key string
		seq int
	}
	rows := []row{{"b", 1}, {"a", 2}, {"b", 3}, {"a", 4}}
	SortSlice(rows, func(x, y row) bool { return x.key < y.key })

	assert.Equal(t, []row{{"a", 2}, {"a", 4}, {"b", 1}, {"b", 3}}, rows)
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]bool{"zeta": true, "alpha": true, "Mu": true})
	assert.Equal(t, []string{"Mu", "alpha", "zeta"}, keys)
}
