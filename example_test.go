package mapkit_test

import (
	"errors"
	"fmt"

	"github.com/aisdi/mapkit"
)

func ExampleTreeMap() {
	m := mapkit.NewTreeMapFrom([]mapkit.Entry[int, string]{{1, "a"}, {2, "b"}, {3, "c"}})

	v, _ := m.ValueOf(2)
	fmt.Println(v)

	_ = m.Remove(2)
	if _, err := m.ValueOf(2); errors.Is(err, mapkit.ErrNotFound) {
		fmt.Println("2 is gone")
	}

	for k, v := range m.All() {
		fmt.Println(k, v)
	}
	// Output:
	// b
	// 2 is gone
	// 1 a
	// 3 c
}

func ExampleHashMap_Access() {
	counts := mapkit.NewHashMap[string, int]()
	for _, w := range []string{"go", "map", "go"} {
		*counts.Access(w)++
	}
	n, _ := counts.ValueOf("go")
	fmt.Println(counts.Len(), n)
	// Output: 2 2
}

func ExampleTreeIterator() {
	m := mapkit.NewTreeMapFrom([]mapkit.Entry[string, int]{{"x", 1}, {"y", 2}})

	it := m.End()
	for it.Prev() == nil {
		e, _ := it.Entry()
		fmt.Println(e.Key, e.Value)
	}
	// Output:
	// y 2
	// x 1
}
