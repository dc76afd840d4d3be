package mapkit

import (
	"iter"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// TreeMap is an ordered map backed by an AVL tree.
//
// Every node links to its parent, so iterators walk the tree in both
// directions without a stack. The nodes holding the smallest and largest
// keys are cached, which makes Begin, Min and Max O(1).
//
// Access may rotate nodes but never moves a key to another node, so value
// pointers handed out by Access or ValuePtr survive insertions. Remove
// shifts keys between nodes and invalidates every such pointer; iterators
// recover by looking their key up again.
//
// A TreeMap must be created with NewTreeMap or NewTreeMapFunc. It is not
// safe for concurrent use.
type TreeMap[K, V any] struct {
	root     *treeNode[K, V]
	minNode  *treeNode[K, V]
	maxNode  *treeNode[K, V]
	size     int
	gen      uint64
	cmp      func(a, b K) int
	valEqual func(a, b V) bool
}

type treeNode[K, V any] struct {
	key    K
	value  V
	height int
	left   *treeNode[K, V]
	right  *treeNode[K, V]
	parent *treeNode[K, V]
}

const nilComparator = "mapkit: nil comparator"

// NewTreeMap creates a TreeMap ordered by the natural ordering of K.
// NaN float keys sort before all other keys.
func NewTreeMap[K constraints.Ordered, V any](options ...func(*Config)) *TreeMap[K, V] {
	return NewTreeMapFunc[K, V](defaultCompare[K], nil, options...)
}

// NewTreeMapFunc creates a TreeMap ordered by cmp, which must return a
// negative number when a < b, a positive number when a > b and zero when
// they are equivalent. A nil valEqual compares values with ==. Options are
// accepted for symmetry with NewHashMap and have no effect.
func NewTreeMapFunc[K, V any](
	cmp func(a, b K) int,
	valEqual func(a, b V) bool,
	options ...func(*Config),
) *TreeMap[K, V] {
	if cmp == nil {
		panic(nilComparator)
	}
	if valEqual == nil {
		valEqual = defaultValEqual[V]()
	}
	return &TreeMap[K, V]{cmp: cmp, valEqual: valEqual}
}

// NewTreeMapFrom creates a TreeMap holding entries. When a key repeats, the
// later entry wins.
func NewTreeMapFrom[K constraints.Ordered, V any](
	entries []Entry[K, V],
	options ...func(*Config),
) *TreeMap[K, V] {
	t := NewTreeMap[K, V](options...)
	for _, e := range entries {
		*t.Access(e.Key) = e.Value
	}
	return t
}

func nodeHeight[K, V any](n *treeNode[K, V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *treeNode[K, V]) fixHeight() {
	n.height = 1 + max(nodeHeight(n.left), nodeHeight(n.right))
}

func (n *treeNode[K, V]) balance() int {
	return nodeHeight(n.left) - nodeHeight(n.right)
}

// rotateRight lifts y.left into y's place and returns it.
func rotateRight[K, V any](y *treeNode[K, V]) *treeNode[K, V] {
	x := y.left
	y.left = x.right
	if x.right != nil {
		x.right.parent = y
	}
	x.right = y
	x.parent = y.parent
	y.parent = x
	y.fixHeight()
	x.fixHeight()
	return x
}

// rotateLeft lifts x.right into x's place and returns it.
func rotateLeft[K, V any](x *treeNode[K, V]) *treeNode[K, V] {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.left = x
	y.parent = x.parent
	x.parent = y
	x.fixHeight()
	y.fixHeight()
	return y
}

func leftmost[K, V any](n *treeNode[K, V]) *treeNode[K, V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func rightmost[K, V any](n *treeNode[K, V]) *treeNode[K, V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// successor returns the in-order successor of n, or nil after the last node.
func successor[K, V any](n *treeNode[K, V]) *treeNode[K, V] {
	if n.right != nil {
		return leftmost(n.right)
	}
	for n.parent != nil && n == n.parent.right {
		n = n.parent
	}
	return n.parent
}

// predecessor returns the in-order predecessor of n, or nil before the first
// node.
func predecessor[K, V any](n *treeNode[K, V]) *treeNode[K, V] {
	if n.left != nil {
		return rightmost(n.left)
	}
	for n.parent != nil && n == n.parent.left {
		n = n.parent
	}
	return n.parent
}

func (t *TreeMap[K, V]) lookup(key K) *treeNode[K, V] {
	n := t.root
	for n != nil {
		c := t.cmp(key, n.key)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Access returns a pointer to the value stored under key, inserting the
// zero value first if key is absent. It panics on a TreeMap that was not
// created by a constructor.
func (t *TreeMap[K, V]) Access(key K) *V {
	if t.cmp == nil {
		panic(nilComparator)
	}
	if n := t.lookup(key); n != nil {
		return &n.value
	}
	var inserted *treeNode[K, V]
	t.root = t.insert(t.root, nil, key, &inserted)
	t.root.parent = nil
	t.size++
	return &inserted.value
}

// insert places key below n and returns the root of the rebalanced subtree.
// The node created for key is stored in *inserted.
func (t *TreeMap[K, V]) insert(n, parent *treeNode[K, V], key K, inserted **treeNode[K, V]) *treeNode[K, V] {
	if n == nil {
		n = &treeNode[K, V]{key: key, height: 1, parent: parent}
		*inserted = n
		if t.minNode == nil || t.cmp(key, t.minNode.key) < 0 {
			t.minNode = n
		}
		if t.maxNode == nil || t.cmp(key, t.maxNode.key) > 0 {
			t.maxNode = n
		}
		return n
	}
	c := t.cmp(key, n.key)
	switch {
	case c < 0:
		n.left = t.insert(n.left, n, key, inserted)
	case c > 0:
		n.right = t.insert(n.right, n, key, inserted)
	default:
		*inserted = n
		return n
	}
	n.fixHeight()

	// The heavy side decides the rotation: LL and RR take one, LR and RL
	// straighten the child first.
	switch b := n.balance(); {
	case b > 1:
		if t.cmp(key, n.left.key) < 0 {
			return rotateRight(n)
		}
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case b < -1:
		if t.cmp(key, n.right.key) > 0 {
			return rotateLeft(n)
		}
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// ValueOf returns the value stored under key, or ErrNotFound.
func (t *TreeMap[K, V]) ValueOf(key K) (V, error) {
	n := t.lookup(key)
	if n == nil {
		var zero V
		return zero, notFound("value of", key)
	}
	return n.value, nil
}

// ValuePtr returns a pointer to the value stored under key, or ErrNotFound.
func (t *TreeMap[K, V]) ValuePtr(key K) (*V, error) {
	n := t.lookup(key)
	if n == nil {
		return nil, notFound("value of", key)
	}
	return &n.value, nil
}

// Contains reports whether key is present.
func (t *TreeMap[K, V]) Contains(key K) bool {
	return t.lookup(key) != nil
}

// Find returns an iterator positioned at key, or End if key is absent.
func (t *TreeMap[K, V]) Find(key K) TreeIterator[K, V] {
	n := t.lookup(key)
	if n == nil {
		return t.End()
	}
	return t.iteratorAt(n)
}

// Remove deletes key. If key is absent it returns ErrNotFound and the tree
// is left unchanged.
func (t *TreeMap[K, V]) Remove(key K) error {
	if t.lookup(key) == nil {
		return notFound("remove", key)
	}
	t.root = t.remove(t.root, key)
	if t.root != nil {
		t.root.parent = nil
	}
	t.size--
	t.gen++
	return nil
}

// remove deletes key from the subtree rooted at n, which must contain it,
// and returns the root of the rebalanced subtree.
func (t *TreeMap[K, V]) remove(n *treeNode[K, V], key K) *treeNode[K, V] {
	c := t.cmp(key, n.key)
	switch {
	case c < 0:
		n.left = t.remove(n.left, key)
	case c > 0:
		n.right = t.remove(n.right, key)
	case n.left == nil && n.right == nil:
		// A leaf extremum hands its role to its parent.
		if t.minNode == n {
			t.minNode = n.parent
		}
		if t.maxNode == n {
			t.maxNode = n.parent
		}
		return nil
	case n.left == nil || n.right == nil:
		// The single child is a leaf; pull its entry up and drop it.
		child := n.left
		if child == nil {
			child = n.right
		}
		if t.minNode == child {
			t.minNode = n
		}
		if t.maxNode == child {
			t.maxNode = n
		}
		n.key, n.value = child.key, child.value
		n.left, n.right = child.left, child.right
	default:
		succ := leftmost(n.right)
		n.key, n.value = succ.key, succ.value
		n.right = t.remove(n.right, succ.key)
	}
	if n.left != nil {
		n.left.parent = n
	}
	if n.right != nil {
		n.right.parent = n
	}
	n.fixHeight()

	switch b := n.balance(); {
	case b > 1:
		if n.left.balance() >= 0 {
			return rotateRight(n)
		}
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case b < -1:
		if n.right.balance() <= 0 {
			return rotateLeft(n)
		}
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// RemoveAt deletes the entry it points at. It fails with ErrInvalidPosition
// if it is the end sentinel or belongs to another tree.
func (t *TreeMap[K, V]) RemoveAt(it TreeIterator[K, V]) error {
	if it.t != t {
		return invalidPosition("remove at iterator of another map")
	}
	key, err := it.Key()
	if err != nil {
		return err
	}
	return t.Remove(key)
}

// Len returns the number of entries.
func (t *TreeMap[K, V]) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no entries.
func (t *TreeMap[K, V]) IsEmpty() bool {
	return t.size == 0
}

// Height returns the height of the tree: 0 when empty, 1 for a single node.
func (t *TreeMap[K, V]) Height() int {
	return nodeHeight(t.root)
}

// Min returns the entry with the smallest key.
func (t *TreeMap[K, V]) Min() (Entry[K, V], error) {
	if t.minNode == nil {
		return Entry[K, V]{}, errors.Wrap(ErrNotFound, "min of empty map")
	}
	return Entry[K, V]{Key: t.minNode.key, Value: t.minNode.value}, nil
}

// Max returns the entry with the largest key.
func (t *TreeMap[K, V]) Max() (Entry[K, V], error) {
	if t.maxNode == nil {
		return Entry[K, V]{}, errors.Wrap(ErrNotFound, "max of empty map")
	}
	return Entry[K, V]{Key: t.maxNode.key, Value: t.maxNode.value}, nil
}

// Equal reports whether t and other hold the same keys, compared with t's
// comparator, mapped to values equal under t's value equality.
func (t *TreeMap[K, V]) Equal(other *TreeMap[K, V]) bool {
	return t.EqualFunc(other, t.valEqual)
}

// EqualFunc is like Equal but compares values with eq.
func (t *TreeMap[K, V]) EqualFunc(other *TreeMap[K, V], eq func(a, b V) bool) bool {
	if t == other {
		return true
	}
	if t.size != other.size {
		return false
	}
	a, b := t.minNode, other.minNode
	for a != nil && b != nil {
		if t.cmp(a.key, b.key) != 0 || !eq(a.value, b.value) {
			return false
		}
		a, b = successor(a), successor(b)
	}
	return a == nil && b == nil
}

// Clone returns a deep copy of t with the same shape, comparator and value
// equality. Values themselves are copied by assignment.
func (t *TreeMap[K, V]) Clone() *TreeMap[K, V] {
	clone := &TreeMap[K, V]{
		size:     t.size,
		cmp:      t.cmp,
		valEqual: t.valEqual,
	}
	clone.root = cloneNode(t.root, nil)
	if clone.root != nil {
		clone.minNode = leftmost(clone.root)
		clone.maxNode = rightmost(clone.root)
	}
	return clone
}

func cloneNode[K, V any](n, parent *treeNode[K, V]) *treeNode[K, V] {
	if n == nil {
		return nil
	}
	c := &treeNode[K, V]{key: n.key, value: n.value, height: n.height, parent: parent}
	c.left = cloneNode(n.left, c)
	c.right = cloneNode(n.right, c)
	return c
}

// CopyFrom replaces the contents of t with a deep copy of src. Copying a
// tree onto itself does nothing.
func (t *TreeMap[K, V]) CopyFrom(src *TreeMap[K, V]) {
	if t == src {
		return
	}
	gen := t.gen + 1
	*t = *src.Clone()
	t.gen = gen
}

// MoveFrom transfers the contents of src to t in constant time, dropping
// whatever t held. src is left empty and ready to use.
func (t *TreeMap[K, V]) MoveFrom(src *TreeMap[K, V]) {
	if t == src {
		return
	}
	gen := max(t.gen, src.gen) + 1
	*t = *src
	t.gen = gen
	src.root, src.minNode, src.maxNode = nil, nil, nil
	src.size = 0
	src.gen = gen
}

// Clear removes all entries.
func (t *TreeMap[K, V]) Clear() {
	t.root, t.minNode, t.maxNode = nil, nil, nil
	t.size = 0
	t.gen++
}

// All returns an iterator over all entries in ascending key order.
// If t is modified during the iteration, some entries may be skipped or
// visited twice.
func (t *TreeMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := t.minNode; n != nil; n = successor(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Backward returns an iterator over all entries in descending key order.
func (t *TreeMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := t.maxNode; n != nil; n = predecessor(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Keys returns an iterator over the keys in ascending order.
func (t *TreeMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for n := t.minNode; n != nil; n = successor(n) {
			if !yield(n.key) {
				return
			}
		}
	}
}

// Values returns an iterator over the values in ascending key order.
func (t *TreeMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for n := t.minNode; n != nil; n = successor(n) {
			if !yield(n.value) {
				return
			}
		}
	}
}
