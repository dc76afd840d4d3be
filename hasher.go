package mapkit

import (
	"hash/maphash"
	"reflect"
	"unsafe"

	"github.com/fxamacker/circlehash"
	"golang.org/x/exp/constraints"
)

// stringHashSeed is the 64-bit Golden Ratio mixing constant, used as a fixed
// seed so string keys land in the same buckets in every process.
const stringHashSeed uint64 = 0x9E3779B185EBCA87

var comparableSeed = maphash.MakeSeed()

// defaultHasher picks the key hash function once per map.
//
// Integer kinds hash to their own bit pattern, so the bucket index of an
// integer key is the key modulo the bucket count. Strings go through
// circlehash. Any other comparable type uses the runtime's hash for
// comparable values, which is stable within a process only.
func defaultHasher[K comparable]() func(K) uint64 {
	var zero K
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		switch unsafe.Sizeof(zero) {
		case 8:
			return func(key K) uint64 {
				return *(*uint64)(unsafe.Pointer(&key))
			}
		case 4:
			return func(key K) uint64 {
				return uint64(*(*uint32)(unsafe.Pointer(&key)))
			}
		case 2:
			return func(key K) uint64 {
				return uint64(*(*uint16)(unsafe.Pointer(&key)))
			}
		case 1:
			return func(key K) uint64 {
				return uint64(*(*uint8)(unsafe.Pointer(&key)))
			}
		}

	case reflect.String:
		return func(key K) uint64 {
			return circlehash.Hash64String(*(*string)(unsafe.Pointer(&key)), stringHashSeed)
		}
	}

	return func(key K) uint64 {
		return maphash.Comparable(comparableSeed, key)
	}
}

// defaultValEqual compares values with ==. It panics at comparison time if
// the dynamic value type is not comparable; maps holding such values need an
// explicit valEqual.
func defaultValEqual[V any]() func(a, b V) bool {
	return func(a, b V) bool {
		return any(a) == any(b)
	}
}

// defaultCompare orders K by its natural ordering. NaN sorts before every
// other value and equal to itself, so float keys still form a total order.
func defaultCompare[K constraints.Ordered](a, b K) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN || a < b:
		return -1
	case bNaN || a > b:
		return 1
	}
	return 0
}
