// Package grid holds the pure index math of the engine: regions, the
// chunk grid, the chunk key scheme and strided buffer copies. Nothing in
// here touches storage.
package grid

// Region is a rectangular sub-range of an array's index space: one
// half-open [lo, hi) interval per dimension. A rank 0 region is the empty
// slice and designates the single scalar element.
type Region [][2]int64

// FullRegion covers an entire shape.
func FullRegion(shape []int64) Region {
	r := make(Region, len(shape))
	for i, s := range shape {
		r[i] = [2]int64{0, s}
	}
	return r
}

// Rank is the number of dimensions.
func (r Region) Rank() int {
	return len(r)
}

// Shape returns the extent of the region along each dimension.
func (r Region) Shape() []int64 {
	s := make([]int64, len(r))
	for i, iv := range r {
		s[i] = iv[1] - iv[0]
	}
	return s
}

// Elems is the number of elements the region covers. A rank 0 region
// holds exactly one element.
func (r Region) Elems() int64 {
	n := int64(1)
	for _, iv := range r {
		d := iv[1] - iv[0]
		if d < 0 {
			d = 0
		}
		n *= d
	}
	return n
}

// Empty reports whether the region covers no elements.
func (r Region) Empty() bool {
	for _, iv := range r {
		if iv[1] <= iv[0] {
			return true
		}
	}
	return false
}

// Clamp returns a copy of the region restricted to [0, shape[i]) along
// each dimension.
func (r Region) Clamp(shape []int64) Region {
	out := make(Region, len(r))
	for i, iv := range r {
		lo, hi := iv[0], iv[1]
		if lo < 0 {
			lo = 0
		}
		if hi > shape[i] {
			hi = shape[i]
		}
		if hi < lo {
			hi = lo
		}
		out[i] = [2]int64{lo, hi}
	}
	return out
}
