package core

import "golang.org/x/exp/constraints"

// Extent is the [Min, Max] range of a set of values
type Extent[T constraints.Ordered] struct {
	Min T
	Max T
}

// ExtentOf returns the extent of the values selected by fn and false
// when items is empty
func ExtentOf[E any, T constraints.Ordered](items []E, fn func(E) T) (Extent[T], bool) {
	if len(items) == 0 {
		return Extent[T]{}, false
	}

	first := fn(items[0])
	ext := Extent[T]{Min: first, Max: first}
	for _, item := range items[1:] {
		v := fn(item)
		if v < ext.Min {
			ext.Min = v
		}
		if v > ext.Max {
			ext.Max = v
		}
	}
	return ext, true
}
