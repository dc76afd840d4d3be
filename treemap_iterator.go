package mapkit

// TreeIterator is a bidirectional position in a TreeMap, moving in key
// order. The end sentinel sits one past the largest key.
//
// After a removal the iterator looks its key up again, and fails with
// ErrInvalidPosition if that key is gone.
type TreeIterator[K, V any] struct {
	t        *TreeMap[K, V]
	n        *treeNode[K, V]
	key      K
	gen      uint64
	writable bool
}

// Begin returns an iterator at the smallest key, or End if the tree is
// empty.
func (t *TreeMap[K, V]) Begin() TreeIterator[K, V] {
	if t.minNode == nil {
		return t.End()
	}
	return t.iteratorAt(t.minNode)
}

// End returns the end sentinel.
func (t *TreeMap[K, V]) End() TreeIterator[K, V] {
	return TreeIterator[K, V]{t: t, gen: t.gen, writable: true}
}

func (t *TreeMap[K, V]) iteratorAt(n *treeNode[K, V]) TreeIterator[K, V] {
	return TreeIterator[K, V]{t: t, n: n, key: n.key, gen: t.gen, writable: true}
}

func (it TreeIterator[K, V]) resolve() (TreeIterator[K, V], error) {
	if it.t == nil {
		return it, invalidPosition("iterator has no map")
	}
	if it.gen == it.t.gen {
		return it, nil
	}
	it.gen = it.t.gen
	if it.n == nil {
		return it, nil
	}
	n := it.t.lookup(it.key)
	if n == nil {
		return it, invalidPosition("iterator entry was removed")
	}
	it.n = n
	return it, nil
}

func (it TreeIterator[K, V]) current(op string) (*treeNode[K, V], error) {
	cur, err := it.resolve()
	if err != nil {
		return nil, err
	}
	if cur.n == nil {
		return nil, invalidPosition(op + " at end")
	}
	return cur.n, nil
}

func (it *TreeIterator[K, V]) moveTo(cur TreeIterator[K, V], n *treeNode[K, V]) {
	cur.n = n
	if n != nil {
		cur.key = n.key
	} else {
		var zero K
		cur.key = zero
	}
	*it = cur
}

// Next advances to the next larger key. From the largest key it moves to
// End; at End it fails with ErrInvalidPosition.
func (it *TreeIterator[K, V]) Next() error {
	cur, err := it.resolve()
	if err != nil {
		return err
	}
	if cur.n == nil {
		return invalidPosition("next at end")
	}
	it.moveTo(cur, successor(cur.n))
	return nil
}

// Prev moves to the next smaller key. From End it moves to the largest key.
// It fails with ErrInvalidPosition at the smallest key or when the tree is
// empty.
func (it *TreeIterator[K, V]) Prev() error {
	cur, err := it.resolve()
	if err != nil {
		return err
	}
	switch {
	case cur.t.size == 0:
		return invalidPosition("prev on empty map")
	case cur.n == nil:
		it.moveTo(cur, cur.t.maxNode)
	case cur.n == cur.t.minNode:
		return invalidPosition("prev at begin")
	default:
		it.moveTo(cur, predecessor(cur.n))
	}
	return nil
}

// Entry returns the key and value at the iterator.
func (it TreeIterator[K, V]) Entry() (Entry[K, V], error) {
	n, err := it.current("entry")
	if err != nil {
		return Entry[K, V]{}, err
	}
	return Entry[K, V]{Key: n.key, Value: n.value}, nil
}

// Key returns the key at the iterator.
func (it TreeIterator[K, V]) Key() (K, error) {
	n, err := it.current("key")
	if err != nil {
		var zero K
		return zero, err
	}
	return n.key, nil
}

// Value returns the value at the iterator.
func (it TreeIterator[K, V]) Value() (V, error) {
	n, err := it.current("value")
	if err != nil {
		var zero V
		return zero, err
	}
	return n.value, nil
}

// ValuePtr returns a pointer to the value at the iterator. It fails with
// ErrReadOnlyIterator if the iterator was narrowed with ReadOnly.
func (it TreeIterator[K, V]) ValuePtr() (*V, error) {
	if !it.writable {
		return nil, ErrReadOnlyIterator
	}
	n, err := it.current("value pointer")
	if err != nil {
		return nil, err
	}
	return &n.value, nil
}

// ReadOnly returns a copy of it that cannot hand out value pointers.
func (it TreeIterator[K, V]) ReadOnly() TreeIterator[K, V] {
	it.writable = false
	return it
}

// AtEnd reports whether it is the end sentinel.
func (it TreeIterator[K, V]) AtEnd() bool {
	cur, err := it.resolve()
	return err == nil && cur.n == nil
}

// Equal reports whether it and other point at the same position of the
// same tree. Writability is ignored.
func (it TreeIterator[K, V]) Equal(other TreeIterator[K, V]) bool {
	a, errA := it.resolve()
	b, errB := other.resolve()
	if errA != nil || errB != nil {
		return false
	}
	return a.t == b.t && a.n == b.n
}
