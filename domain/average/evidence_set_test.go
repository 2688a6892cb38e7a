package average

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidenceSet_PutKeepsFirstSeenPosition(t *testing.T) {
	var s EvidenceSet
	s.put(EvidenceAverage{ID: 4, Count: 1})
	s.put(EvidenceAverage{ID: 2, Count: 1})
	s.put(EvidenceAverage{ID: 4, Count: 2})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{4, 2}, s.IDs())
	e, ok := s.Get(4)
	assert.True(t, ok)
	assert.Equal(t, 2, e.Count)

	_, ok = s.Get(99)
	assert.False(t, ok)
}

func TestEvidenceSet_CloneIsIndependent(t *testing.T) {
	var s EvidenceSet
	s.put(EvidenceAverage{ID: 1, Count: 1})

	c := s.clone()
	c.put(EvidenceAverage{ID: 1, Count: 5})
	c.put(EvidenceAverage{ID: 2, Count: 1})

	orig, _ := s.Get(1)
	assert.Equal(t, 1, orig.Count)
	assert.Equal(t, []int{1}, s.IDs())
	assert.Equal(t, []int{1, 2}, c.IDs())

	var empty EvidenceSet
	assert.Equal(t, 0, empty.clone().Len())
	assert.Empty(t, empty.All())
}
