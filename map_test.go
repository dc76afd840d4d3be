package mapkit

import (
	"maps"
	"slices"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBadHashMap returns a HashMap whose keys all collide into one chain.
// Everything should still work as expected.
func newBadHashMap[K comparable, V any]() *HashMap[K, V] {
	return NewHashMapWithHasher[K, V](func(K) uint64 { return 0 }, nil)
}

// newTruncHashMap keeps only the low four bits of the default hash, to
// catch issues with near collisions.
func newTruncHashMap[K comparable, V any]() *HashMap[K, V] {
	hasher := defaultHasher[K]()
	return NewHashMapWithHasher[K, V](func(k K) uint64 {
		return hasher(k) & (1<<4 - 1)
	}, nil)
}

var contractFactories = []struct {
	name string
	new  func() Map[string, int]
}{
	{"HashMap", func() Map[string, int] { return NewHashMap[string, int]() }},
	{"HashMapZero", func() Map[string, int] { return &HashMap[string, int]{} }},
	{"HashMapBadHash", func() Map[string, int] { return newBadHashMap[string, int]() }},
	{"HashMapTruncHash", func() Map[string, int] { return newTruncHashMap[string, int]() }},
	{"TreeMap", func() Map[string, int] { return NewTreeMap[string, int]() }},
}

func TestMapContract(t *testing.T) {
	for _, f := range contractFactories {
		t.Run(f.name, func(t *testing.T) {
			t.Run("Empty", func(t *testing.T) { testContractEmpty(t, f.new()) })
			t.Run("AccessInsertsZero", func(t *testing.T) { testContractAccess(t, f.new()) })
			t.Run("StoreLoad", func(t *testing.T) { testContractStoreLoad(t, f.new()) })
			t.Run("Remove", func(t *testing.T) { testContractRemove(t, f.new()) })
			t.Run("Clear", func(t *testing.T) { testContractClear(t, f.new()) })
			t.Run("Iteration", func(t *testing.T) { testContractIteration(t, f.new()) })
			t.Run("EmptyStringKey", func(t *testing.T) { testContractEmptyStringKey(t, f.new()) })
		})
	}
}

func testContractEmpty(t *testing.T, m Map[string, int]) {
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("a"))

	_, err := m.ValueOf("a")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.ValuePtr("a")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Remove("a"), ErrNotFound)

	for k, v := range m.All() {
		t.Fatalf("unexpected entry %q=%d", k, v)
	}
	assert.Equal(t, 0, m.Len(), "failed lookups must not insert")
}

func testContractAccess(t *testing.T, m Map[string, int]) {
	p := m.Access("x")
	require.NotNil(t, p)
	assert.Equal(t, 0, *p)
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Contains("x"))

	*p = 7
	v, err := m.ValueOf("x")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	// A second Access returns the same slot and does not grow the map.
	*m.Access("x") += 1
	assert.Equal(t, 1, m.Len())
	v, err = m.ValueOf("x")
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	ptr, err := m.ValuePtr("x")
	require.NoError(t, err)
	*ptr = 100
	v, _ = m.ValueOf("x")
	assert.Equal(t, 100, v)
}

func testContractStoreLoad(t *testing.T, m Map[string, int]) {
	const n = 1000
	for i := 0; i < n; i++ {
		*m.Access(strconv.Itoa(i)) = i
		require.Equal(t, i+1, m.Len())
	}
	for i := 0; i < n; i++ {
		v, err := m.ValueOf(strconv.Itoa(i))
		require.NoError(t, err, "key %d", i)
		require.Equal(t, i, v)
	}
	_, err := m.ValueOf("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, n, m.Len())
}

func testContractRemove(t *testing.T, m Map[string, int]) {
	const n = 500
	for i := 0; i < n; i++ {
		*m.Access(strconv.Itoa(i)) = i
	}
	for i := 0; i < n; i += 2 {
		require.NoError(t, m.Remove(strconv.Itoa(i)))
	}
	assert.Equal(t, n/2, m.Len())
	for i := 0; i < n; i++ {
		assert.Equal(t, i%2 == 1, m.Contains(strconv.Itoa(i)), "key %d", i)
	}

	err := m.Remove("0")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "remove 0")
	assert.Equal(t, n/2, m.Len())

	for i := 1; i < n; i += 2 {
		require.NoError(t, m.Remove(strconv.Itoa(i)))
	}
	assert.True(t, m.IsEmpty())
}

func testContractClear(t *testing.T, m Map[string, int]) {
	for i := 0; i < 100; i++ {
		*m.Access(strconv.Itoa(i)) = i
	}
	m.Clear()
	assert.True(t, m.IsEmpty())
	assert.False(t, m.Contains("1"))

	*m.Access("again") = 1
	assert.Equal(t, 1, m.Len())
}

func testContractIteration(t *testing.T, m Map[string, int]) {
	want := map[string]int{}
	for i := 0; i < 200; i++ {
		k := strconv.Itoa(i)
		*m.Access(k) = i
		want[k] = i
	}
	assert.Equal(t, want, maps.Collect(m.All()))
	assert.Equal(t, want, maps.Collect(m.Backward()))

	forward := slices.Collect(m.Keys())
	var backward []string
	for k := range m.Backward() {
		backward = append(backward, k)
	}
	slices.Reverse(backward)
	assert.Equal(t, forward, backward)

	values := slices.Collect(m.Values())
	require.Len(t, values, len(forward))
	for i, k := range forward {
		assert.Equal(t, want[k], values[i])
	}

	seen := 0
	for range m.All() {
		seen++
		if seen == 10 {
			break
		}
	}
	assert.Equal(t, 10, seen)
}

func testContractEmptyStringKey(t *testing.T, m Map[string, int]) {
	*m.Access("") = 42
	v, err := m.ValueOf("")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	require.NoError(t, m.Remove(""))
	assert.False(t, m.Contains(""))
}

func TestRoundTrip(t *testing.T) {
	entries := []Entry[int, string]{{1, "a"}, {2, "b"}, {3, "c"}}

	hm := NewHashMapFrom(entries)
	tm := NewTreeMapFrom(entries)
	for _, e := range entries {
		k, err := hm.Find(e.Key).Key()
		require.NoError(t, err)
		assert.Equal(t, e.Key, k)
		k, err = tm.Find(e.Key).Key()
		require.NoError(t, err)
		assert.Equal(t, e.Key, k)
	}
	for _, m := range []Map[int, string]{hm, tm} {
		require.Equal(t, 3, m.Len())
		v, err := m.ValueOf(2)
		require.NoError(t, err)
		assert.Equal(t, "b", v)

		require.NoError(t, m.Remove(2))
		assert.Equal(t, 2, m.Len())
		_, err = m.ValueOf(2)
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.True(t, hm.Find(2).Equal(hm.End()))
	assert.True(t, tm.Find(2).Equal(tm.End()))
	assert.Equal(t, []int{1, 3}, slices.Collect(tm.Keys()))
}

func TestErrorsWrapContext(t *testing.T) {
	m := NewTreeMap[int, int]()
	_, err := m.ValueOf(5)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	assert.Equal(t, "value of 5: mapkit: key not found", err.Error())

	it := m.End()
	_, err = it.Key()
	assert.Equal(t, ErrInvalidPosition, errors.Cause(err))
}

func TestWithPresize(t *testing.T) {
	assert.Equal(t, defaultBucketCount, calcBucketCount(0))
	assert.Equal(t, defaultBucketCount, calcBucketCount(-5))
	assert.Equal(t, defaultBucketCount, calcBucketCount(1))

	for _, hint := range []int{10, 12, 13, 100, 1000, 4097} {
		n := calcBucketCount(hint)
		assert.Less(t, float64(hint)/float64(n), loadFactor, "hint %d", hint)
		assert.Zero(t, n%bucketsPerCacheLine, "hint %d", hint)
	}

	m := NewHashMap[int, int](WithPresize(1000))
	buckets := m.BucketCount()
	for i := 0; i < 1000; i++ {
		*m.Access(i) = i
	}
	assert.Equal(t, buckets, m.BucketCount(), "presized map must not grow")

	// TreeMap accepts the option without effect.
	tm := NewTreeMap[int, int](WithPresize(1000))
	assert.True(t, tm.IsEmpty())
}
