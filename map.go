// Package mapkit provides two single-goroutine map containers behind one
// contract: HashMap, a chained hash table, and TreeMap, an ordered AVL tree.
// Both offer bidirectional iterators that report misuse as errors.
package mapkit

import "iter"

const (
	// loadFactor is the entries-per-bucket ratio a HashMap stays strictly
	// below. A HashMap grows before an insertion would reach it.
	loadFactor = 0.75
	// defaultBucketCount is the bucket count of a HashMap created without
	// WithPresize, and the floor Clear shrinks back to.
	defaultBucketCount = 16
)

// Map is the key/value contract shared by HashMap and TreeMap.
//
// Iterator-returning operations (Find, Begin, End, RemoveAt) and the
// whole-container operations (Equal, Clone, CopyFrom, MoveFrom) live on the
// concrete types, since their parameter types differ per engine.
type Map[K, V any] interface {
	// Access returns a pointer to the value stored under key, inserting the
	// zero value first if key is absent. It never fails.
	Access(key K) *V
	// ValueOf returns the value stored under key, or ErrNotFound.
	ValueOf(key K) (V, error)
	// ValuePtr returns a pointer to the value stored under key, or ErrNotFound.
	ValuePtr(key K) (*V, error)
	Contains(key K) bool
	// Remove deletes key, or returns ErrNotFound and leaves the map untouched.
	Remove(key K) error
	Len() int
	IsEmpty() bool
	Clear()
	All() iter.Seq2[K, V]
	Backward() iter.Seq2[K, V]
	Keys() iter.Seq[K]
	Values() iter.Seq[V]
}

var (
	_ Map[int, string] = (*HashMap[int, string])(nil)
	_ Map[int, string] = (*TreeMap[int, string])(nil)
)

// Entry is a key/value pair as seen through an iterator.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Config defines configurable HashMap and TreeMap options.
type Config struct {
	sizeHint int
}

// WithPresize configures a new HashMap with enough buckets to hold sizeHint
// entries without growing. The resulting bucket count is also the floor that
// Clear returns to. If sizeHint is zero or negative, the value is ignored.
// TreeMap accepts and ignores it.
func WithPresize(sizeHint int) func(*Config) {
	return func(c *Config) {
		c.sizeHint = sizeHint
	}
}

func newConfig(options []func(*Config)) Config {
	var cfg Config
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// calcBucketCount computes the bucket count needed to hold sizeHint entries
// below the load factor, rounded up to whole cache lines of bucket headers.
func calcBucketCount(sizeHint int) int {
	if sizeHint <= 0 {
		return defaultBucketCount
	}
	n := int(float64(sizeHint)/loadFactor) + 1
	n = (n + bucketsPerCacheLine - 1) / bucketsPerCacheLine * bucketsPerCacheLine
	return max(n, defaultBucketCount)
}
