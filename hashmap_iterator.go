package mapkit

// HashIterator is a bidirectional position in a HashMap.
//
// An iterator is a small value; copying it yields an independent position
// in the same map. The end sentinel sits one past the last entry.
//
// Iterators survive growth of their map, since entries never move. An
// iterator whose entry was removed fails with ErrInvalidPosition. After
// Clear, CopyFrom or MoveFrom the iterator looks its key up in the new
// contents.
type HashIterator[K comparable, V any] struct {
	m        *HashMap[K, V]
	e        *hashEntry[K, V]
	gen      uint64
	writable bool
}

// Begin returns an iterator at the first entry in bucket order, or End if
// the map is empty.
func (m *HashMap[K, V]) Begin() HashIterator[K, V] {
	for i := range m.buckets {
		if e := m.buckets[i].head; e != nil {
			return m.iteratorAt(e)
		}
	}
	return m.End()
}

// End returns the end sentinel.
func (m *HashMap[K, V]) End() HashIterator[K, V] {
	return HashIterator[K, V]{m: m, gen: m.gen, writable: true}
}

func (m *HashMap[K, V]) iteratorAt(e *hashEntry[K, V]) HashIterator[K, V] {
	return HashIterator[K, V]{m: m, e: e, gen: m.gen, writable: true}
}

// resolve returns the iterator's current position in its map. If the
// whole table was replaced since the position was taken, the key is looked
// up in the new contents.
func (it HashIterator[K, V]) resolve() (HashIterator[K, V], error) {
	if it.m == nil {
		return it, invalidPosition("iterator has no map")
	}
	if it.gen != it.m.gen {
		it.gen = it.m.gen
		if it.e == nil {
			return it, nil
		}
		e := it.m.lookup(it.e.key)
		if e == nil {
			return it, invalidPosition("iterator entry was removed")
		}
		it.e = e
		return it, nil
	}
	if it.e != nil && it.e.removed {
		return it, invalidPosition("iterator entry was removed")
	}
	return it, nil
}

func (it HashIterator[K, V]) current(op string) (*hashEntry[K, V], error) {
	cur, err := it.resolve()
	if err != nil {
		return nil, err
	}
	if cur.e == nil {
		return nil, invalidPosition(op + " at end")
	}
	return cur.e, nil
}

// Next advances to the following entry in bucket order. At the last entry
// it moves to End; at End it fails with ErrInvalidPosition.
func (it *HashIterator[K, V]) Next() error {
	cur, err := it.resolve()
	if err != nil {
		return err
	}
	if cur.e == nil {
		return invalidPosition("next at end")
	}
	if cur.e.next != nil {
		cur.e = cur.e.next
		*it = cur
		return nil
	}
	buckets := cur.m.buckets
	for i := cur.e.bucket + 1; i < len(buckets); i++ {
		if buckets[i].head != nil {
			cur.e = buckets[i].head
			*it = cur
			return nil
		}
	}
	cur.e = nil
	*it = cur
	return nil
}

// Prev moves to the preceding entry in bucket order. From End it moves to
// the last entry. It fails with ErrInvalidPosition on the first entry or
// when the map is empty.
func (it *HashIterator[K, V]) Prev() error {
	cur, err := it.resolve()
	if err != nil {
		return err
	}
	if cur.m.size == 0 {
		return invalidPosition("prev on empty map")
	}
	if cur.e != nil && cur.e.prev != nil {
		cur.e = cur.e.prev
		*it = cur
		return nil
	}
	buckets := cur.m.buckets
	start := len(buckets) - 1
	if cur.e != nil {
		start = cur.e.bucket - 1
	}
	for i := start; i >= 0; i-- {
		if buckets[i].tail != nil {
			cur.e = buckets[i].tail
			*it = cur
			return nil
		}
	}
	return invalidPosition("prev at begin")
}

// Entry returns the key and value at the iterator.
func (it HashIterator[K, V]) Entry() (Entry[K, V], error) {
	e, err := it.current("entry")
	if err != nil {
		return Entry[K, V]{}, err
	}
	return Entry[K, V]{Key: e.key, Value: e.value}, nil
}

// Key returns the key at the iterator.
func (it HashIterator[K, V]) Key() (K, error) {
	e, err := it.current("key")
	if err != nil {
		var zero K
		return zero, err
	}
	return e.key, nil
}

// Value returns the value at the iterator.
func (it HashIterator[K, V]) Value() (V, error) {
	e, err := it.current("value")
	if err != nil {
		var zero V
		return zero, err
	}
	return e.value, nil
}

// ValuePtr returns a pointer to the value at the iterator. It fails with
// ErrReadOnlyIterator if the iterator was narrowed with ReadOnly.
func (it HashIterator[K, V]) ValuePtr() (*V, error) {
	if !it.writable {
		return nil, ErrReadOnlyIterator
	}
	e, err := it.current("value pointer")
	if err != nil {
		return nil, err
	}
	return &e.value, nil
}

// ReadOnly returns a copy of it that cannot hand out value pointers.
func (it HashIterator[K, V]) ReadOnly() HashIterator[K, V] {
	it.writable = false
	return it
}

// AtEnd reports whether it is the end sentinel.
func (it HashIterator[K, V]) AtEnd() bool {
	cur, err := it.resolve()
	return err == nil && cur.e == nil
}

// Equal reports whether it and other point at the same position of the
// same map. Writability is ignored.
func (it HashIterator[K, V]) Equal(other HashIterator[K, V]) bool {
	a, errA := it.resolve()
	b, errB := other.resolve()
	if errA != nil || errB != nil {
		return false
	}
	return a.m == b.m && a.e == b.e
}
