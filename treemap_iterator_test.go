package mapkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeIterator_EmptyTree(t *testing.T) {
	m := NewTreeMap[int, int]()
	begin, end := m.Begin(), m.End()
	assert.True(t, begin.Equal(end))
	assert.True(t, begin.AtEnd())

	require.ErrorIs(t, begin.Next(), ErrInvalidPosition)
	err := end.Prev()
	require.ErrorIs(t, err, ErrInvalidPosition)
	assert.Contains(t, err.Error(), "prev on empty map")
	_, err = end.Key()
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestTreeIterator_WalkBothWays(t *testing.T) {
	m := NewTreeMap[int, string]()
	keys := []int{50, 20, 80, 10, 30, 70, 90, 25, 75}
	for _, k := range keys {
		*m.Access(k) = "v"
	}
	asc := []int{10, 20, 25, 30, 50, 70, 75, 80, 90}

	var got []int
	it := m.Begin()
	for !it.AtEnd() {
		k, err := it.Key()
		require.NoError(t, err)
		got = append(got, k)
		require.NoError(t, it.Next())
	}
	assert.Equal(t, asc, got)
	require.ErrorIs(t, it.Next(), ErrInvalidPosition)
	assert.True(t, it.AtEnd(), "failed Next must not move the iterator")

	got = got[:0]
	for {
		require.NoError(t, it.Prev())
		k, err := it.Key()
		require.NoError(t, err)
		got = append(got, k)
		if it.Equal(m.Begin()) {
			break
		}
	}
	assert.Equal(t, []int{90, 80, 75, 70, 50, 30, 25, 20, 10}, got)
	err := it.Prev()
	require.ErrorIs(t, err, ErrInvalidPosition)
	assert.Contains(t, err.Error(), "prev at begin")
}

func TestTreeIterator_SingleEntry(t *testing.T) {
	m := NewTreeMapFrom([]Entry[string, int]{{"only", 1}})
	it := m.Begin()
	require.ErrorIs(t, it.Prev(), ErrInvalidPosition)
	require.NoError(t, it.Next())
	assert.True(t, it.Equal(m.End()))
	require.NoError(t, it.Prev())
	e, err := it.Entry()
	require.NoError(t, err)
	assert.Equal(t, Entry[string, int]{"only", 1}, e)
}

func TestTreeIterator_ValuePtrAndReadOnly(t *testing.T) {
	m := NewTreeMapFrom([]Entry[string, int]{{"a", 1}, {"b", 2}})
	it := m.Find("b")
	p, err := it.ValuePtr()
	require.NoError(t, err)
	*p = 20
	v, _ := m.ValueOf("b")
	assert.Equal(t, 20, v)

	ro := it.ReadOnly()
	_, err = ro.ValuePtr()
	require.ErrorIs(t, err, ErrReadOnlyIterator)
	require.NoError(t, ro.Prev())
	k, err := ro.Key()
	require.NoError(t, err)
	assert.Equal(t, "a", k)
	_, err = ro.ValuePtr()
	require.ErrorIs(t, err, ErrReadOnlyIterator, "moving keeps the iterator read-only")

	assert.True(t, m.Find("missing").AtEnd())
}

func TestTreeIterator_RevalidatesAfterRemoval(t *testing.T) {
	m := NewTreeMap[int, int]()
	for i := 1; i <= 15; i++ {
		*m.Access(i) = i * 10
	}
	its := make(map[int]TreeIterator[int, int])
	for i := 1; i <= 15; i++ {
		its[i] = m.Find(i)
	}

	// Removing an inner node moves other keys between nodes.
	require.NoError(t, m.Remove(8))
	checkTree(t, m)

	for i := 1; i <= 15; i++ {
		it := its[i]
		k, err := it.Key()
		if i == 8 {
			require.ErrorIs(t, err, ErrInvalidPosition)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, i, k)
		v, err := it.Value()
		require.NoError(t, err)
		assert.Equal(t, i*10, v)
	}

	it := its[7]
	require.NoError(t, it.Next())
	k, _ := it.Key()
	assert.Equal(t, 9, k)
}

func TestTreeIterator_EndSurvivesClear(t *testing.T) {
	m := NewTreeMapFrom([]Entry[int, int]{{1, 1}})
	end := m.End()
	m.Clear()
	assert.True(t, end.AtEnd())
	assert.True(t, end.Equal(m.Begin()))
}

func TestTreeMap_RemoveAt(t *testing.T) {
	m := NewTreeMapFrom([]Entry[int, int]{{1, 1}, {2, 2}, {3, 3}})
	require.NoError(t, m.RemoveAt(m.Find(2)))
	assert.False(t, m.Contains(2))
	checkTree(t, m)

	require.ErrorIs(t, m.RemoveAt(m.End()), ErrInvalidPosition)
	other := NewTreeMapFrom([]Entry[int, int]{{1, 1}})
	require.ErrorIs(t, m.RemoveAt(other.Begin()), ErrInvalidPosition)

	for !m.IsEmpty() {
		require.NoError(t, m.RemoveAt(m.Begin()))
		checkTree(t, m)
	}
}
