package mapkit

import "iter"

// HashMap is a hash table that resolves collisions by chaining.
//
// Each bucket holds a doubly linked chain of entries in insertion order.
// Before an insertion would bring the number of entries per bucket to the
// load factor (0.75), the bucket array doubles and every entry is relinked
// into the bucket its hash selects under the new count. The bucket array
// never shrinks, except that Clear returns it to its configured minimum.
//
// Iteration visits buckets in index order and each chain in insertion
// order; it is not sorted by key.
//
// Keys are matched with ==, so a float NaN key never finds itself: every
// Access(NaN) adds another entry, reachable only by iteration. A TreeMap
// from NewTreeMap treats all NaNs as one key instead.
//
// The zero value of a HashMap is an empty map ready to use, with the default
// hasher and value equality.
//
// A HashMap is not safe for concurrent use.
type HashMap[K comparable, V any] struct {
	buckets    []chain[K, V]
	size       int
	keyHash    func(K) uint64
	valEqual   func(a, b V) bool
	minBuckets int

	// gen changes when the whole table is replaced by Clear, CopyFrom or
	// MoveFrom.
	gen uint64
}

type hashEntry[K comparable, V any] struct {
	key     K
	value   V
	prev    *hashEntry[K, V]
	next    *hashEntry[K, V]
	bucket  int
	removed bool
}

// chain is one bucket: an intrusive doubly linked list of entries.
type chain[K comparable, V any] struct {
	head *hashEntry[K, V]
	tail *hashEntry[K, V]
}

func (c *chain[K, V]) pushBack(e *hashEntry[K, V]) {
	e.prev, e.next = c.tail, nil
	if c.tail == nil {
		c.head = e
	} else {
		c.tail.next = e
	}
	c.tail = e
}

func (c *chain[K, V]) unlink(e *hashEntry[K, V]) {
	if e.prev == nil {
		c.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		c.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}

// NewHashMap creates a new HashMap with the default hasher and value
// equality.
//
// Parameters:
//   - WithPresize option for initial capacity
func NewHashMap[K comparable, V any](options ...func(*Config)) *HashMap[K, V] {
	return NewHashMapWithHasher[K, V](nil, nil, options...)
}

// NewHashMapWithHasher creates a HashMap with custom key hashing and value
// equality functions.
//
// Parameters:
//   - keyHash: nil uses the built-in hasher; the bucket index of a key is
//     keyHash(key) modulo the bucket count
//   - valEqual: nil uses ==, which panics in Equal if V's dynamic values are
//     not comparable
//   - WithPresize option for initial capacity
func NewHashMapWithHasher[K comparable, V any](
	keyHash func(K) uint64,
	valEqual func(a, b V) bool,
	options ...func(*Config),
) *HashMap[K, V] {
	m := &HashMap[K, V]{
		keyHash:  keyHash,
		valEqual: valEqual,
	}
	m.init(newConfig(options))
	return m
}

// NewHashMapFrom creates a HashMap holding entries, presized for them.
// When a key repeats, the later entry wins.
func NewHashMapFrom[K comparable, V any](
	entries []Entry[K, V],
	options ...func(*Config),
) *HashMap[K, V] {
	m := NewHashMap[K, V](append([]func(*Config){WithPresize(len(entries))}, options...)...)
	for _, e := range entries {
		*m.Access(e.Key) = e.Value
	}
	return m
}

func (m *HashMap[K, V]) init(cfg Config) {
	if m.keyHash == nil {
		m.keyHash = defaultHasher[K]()
	}
	if m.valEqual == nil {
		m.valEqual = defaultValEqual[V]()
	}
	m.minBuckets = calcBucketCount(cfg.sizeHint)
	m.buckets = make([]chain[K, V], m.minBuckets)
}

// initSlow initializes a zero-value or moved-from map on first insertion.
func (m *HashMap[K, V]) initSlow() {
	if m.buckets != nil {
		return
	}
	if m.minBuckets == 0 {
		m.init(Config{})
		return
	}
	m.buckets = make([]chain[K, V], m.minBuckets)
}

func (m *HashMap[K, V]) bucketIndex(key K) int {
	return int(m.keyHash(key) % uint64(len(m.buckets)))
}

// link appends e to the chain its key selects under the current bucket
// count.
func (m *HashMap[K, V]) link(e *hashEntry[K, V]) {
	e.bucket = m.bucketIndex(e.key)
	m.buckets[e.bucket].pushBack(e)
}

// lookup returns the entry holding key, or nil.
func (m *HashMap[K, V]) lookup(key K) *hashEntry[K, V] {
	if m.size == 0 {
		return nil
	}
	for e := m.buckets[m.bucketIndex(key)].head; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Access returns a pointer to the value stored under key. If key is absent,
// the zero value is inserted first, growing the table beforehand when the
// new entry would reach the load factor.
//
// The pointer stays valid until the entry is removed or the map is cleared;
// growth relinks entries without moving them.
func (m *HashMap[K, V]) Access(key K) *V {
	if e := m.lookup(key); e != nil {
		return &e.value
	}
	m.initSlow()
	if float64(m.size+1) >= loadFactor*float64(len(m.buckets)) {
		m.grow()
	}
	e := &hashEntry[K, V]{key: key}
	m.link(e)
	m.size++
	return &e.value
}

// grow doubles the bucket array and relinks every entry into it. Entries
// that land in the same new bucket keep their relative order, and no entry
// moves in memory, so iterators stay valid.
func (m *HashMap[K, V]) grow() {
	old := m.buckets
	m.buckets = make([]chain[K, V], len(old)<<1)
	for i := range old {
		for e := old[i].head; e != nil; {
			next := e.next
			m.link(e)
			e = next
		}
	}
}

// ValueOf returns the value stored under key, or ErrNotFound.
func (m *HashMap[K, V]) ValueOf(key K) (V, error) {
	e := m.lookup(key)
	if e == nil {
		var zero V
		return zero, notFound("value of", key)
	}
	return e.value, nil
}

// ValuePtr returns a pointer to the value stored under key, or ErrNotFound.
// Unlike Access it never inserts.
func (m *HashMap[K, V]) ValuePtr(key K) (*V, error) {
	e := m.lookup(key)
	if e == nil {
		return nil, notFound("value of", key)
	}
	return &e.value, nil
}

// Contains reports whether key is present.
func (m *HashMap[K, V]) Contains(key K) bool {
	e := m.lookup(key)
	return e != nil
}

// Find returns an iterator positioned at key, or End if key is absent.
func (m *HashMap[K, V]) Find(key K) HashIterator[K, V] {
	e := m.lookup(key)
	if e == nil {
		return m.End()
	}
	return m.iteratorAt(e)
}

// Remove deletes key. If key is absent it returns ErrNotFound and the map
// is left unchanged.
func (m *HashMap[K, V]) Remove(key K) error {
	e := m.lookup(key)
	if e == nil {
		return notFound("remove", key)
	}
	m.removeEntry(e)
	return nil
}

// RemoveAt deletes the entry it points at. It fails with ErrInvalidPosition
// if it is the end sentinel, belongs to another map, or its entry is
// already gone.
func (m *HashMap[K, V]) RemoveAt(it HashIterator[K, V]) error {
	if it.m != m {
		return invalidPosition("remove at iterator of another map")
	}
	e, err := it.current("remove")
	if err != nil {
		return err
	}
	m.removeEntry(e)
	return nil
}

// removeEntry unlinks e and marks it so iterators still holding it fail
// instead of walking a detached entry.
func (m *HashMap[K, V]) removeEntry(e *hashEntry[K, V]) {
	m.buckets[e.bucket].unlink(e)
	e.removed = true
	m.size--
}

// Len returns the number of entries.
func (m *HashMap[K, V]) Len() int {
	return m.size
}

// IsEmpty reports whether the map holds no entries.
func (m *HashMap[K, V]) IsEmpty() bool {
	return m.size == 0
}

// BucketCount returns the current length of the bucket array.
func (m *HashMap[K, V]) BucketCount() int {
	return len(m.buckets)
}

// LoadFactor returns Len()/BucketCount(), or 0 before the first insertion.
func (m *HashMap[K, V]) LoadFactor() float64 {
	if len(m.buckets) == 0 {
		return 0
	}
	return float64(m.size) / float64(len(m.buckets))
}

// Equal reports whether m and other hold the same keys mapped to equal
// values, using m's value equality. Bucket and insertion order are ignored.
func (m *HashMap[K, V]) Equal(other *HashMap[K, V]) bool {
	eq := m.valEqual
	if eq == nil {
		eq = defaultValEqual[V]()
	}
	return m.EqualFunc(other, eq)
}

// EqualFunc is like Equal but compares values with eq.
func (m *HashMap[K, V]) EqualFunc(other *HashMap[K, V], eq func(a, b V) bool) bool {
	if m == other {
		return true
	}
	if m.size != other.size {
		return false
	}
	for k, v := range other.All() {
		e := m.lookup(k)
		if e == nil || !eq(e.value, v) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m: new buckets and new entries, with the
// same bucket count, hasher and value equality, and the same iteration
// order. Values themselves are copied by assignment.
func (m *HashMap[K, V]) Clone() *HashMap[K, V] {
	clone := &HashMap[K, V]{
		keyHash:    m.keyHash,
		valEqual:   m.valEqual,
		minBuckets: m.minBuckets,
		size:       m.size,
	}
	if m.buckets == nil {
		return clone
	}
	clone.buckets = make([]chain[K, V], len(m.buckets))
	for i := range m.buckets {
		for e := m.buckets[i].head; e != nil; e = e.next {
			clone.buckets[i].pushBack(&hashEntry[K, V]{key: e.key, value: e.value, bucket: i})
		}
	}
	return clone
}

// CopyFrom replaces the contents of m with a deep copy of src. Copying a
// map onto itself does nothing.
func (m *HashMap[K, V]) CopyFrom(src *HashMap[K, V]) {
	if m == src {
		return
	}
	gen := m.gen + 1
	*m = *src.Clone()
	m.gen = gen
}

// MoveFrom transfers the contents of src to m in constant time, dropping
// whatever m held. src is left empty and ready to use.
func (m *HashMap[K, V]) MoveFrom(src *HashMap[K, V]) {
	if m == src {
		return
	}
	gen := max(m.gen, src.gen) + 1
	*m = *src
	m.gen = gen
	src.buckets = nil
	src.size = 0
	src.gen = gen
}

// Clear removes all entries and returns the bucket array to its minimum
// length.
func (m *HashMap[K, V]) Clear() {
	if m.minBuckets == 0 {
		m.buckets = nil
	} else {
		m.buckets = make([]chain[K, V], m.minBuckets)
	}
	m.size = 0
	m.gen++
}

// All returns an iterator over all entries in bucket order.
// If m is modified during the iteration, some entries may be skipped or
// visited twice.
func (m *HashMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.buckets {
			for e := m.buckets[i].head; e != nil; e = e.next {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Backward returns an iterator over all entries in reverse bucket order.
func (m *HashMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := len(m.buckets) - 1; i >= 0; i-- {
			for e := m.buckets[i].tail; e != nil; e = e.prev {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Keys returns an iterator over the keys in bucket order.
func (m *HashMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over the values in bucket order.
func (m *HashMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}
