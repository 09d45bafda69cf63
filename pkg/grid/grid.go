package grid

// GridShape returns the number of chunks along each dimension:
// ceil(shape[i] / chunkShape[i]). Rank 0 yields an empty grid shape,
// which stands for the single implicit chunk.
func GridShape(shape, chunkShape []int64) []int64 {
	g := make([]int64, len(shape))
	for i := range shape {
		g[i] = (shape[i] + chunkShape[i] - 1) / chunkShape[i]
	}
	return g
}

// Intersection relates one chunk to a query region: the overlapped
// rectangle expressed both in chunk-local and in region-local coordinates.
// The two rectangles always have the same shape.
type Intersection struct {
	Coord []int64 // position of the chunk in the chunk grid
	Chunk Region  // overlap within the chunk, chunk-local
	Buf   Region  // overlap within the region, region-local
}

// Covers reports whether the intersection spans the whole chunk.
func (x Intersection) Covers(chunkShape []int64) bool {
	for i, iv := range x.Chunk {
		if iv[0] != 0 || iv[1] != chunkShape[i] {
			return false
		}
	}
	return true
}

// Intersections computes the minimal set of chunks overlapping region,
// in grid order. An empty region yields none; a rank 0 region yields the
// single implicit chunk.
func Intersections(region Region, chunkShape []int64) []Intersection {
	rank := len(region)
	if rank == 0 {
		return []Intersection{{Coord: []int64{}, Chunk: Region{}, Buf: Region{}}}
	}
	if region.Empty() {
		return nil
	}

	first := make([]int64, rank)
	last := make([]int64, rank) // inclusive
	total := 1
	for i := range region {
		first[i] = region[i][0] / chunkShape[i]
		last[i] = (region[i][1] - 1) / chunkShape[i]
		total *= int(last[i] - first[i] + 1)
	}

	out := make([]Intersection, 0, total)
	coord := make([]int64, rank)
	copy(coord, first)

	for {
		x := Intersection{
			Coord: make([]int64, rank),
			Chunk: make(Region, rank),
			Buf:   make(Region, rank),
		}
		copy(x.Coord, coord)
		for i := range coord {
			clo := coord[i] * chunkShape[i]
			chi := clo + chunkShape[i]
			lo, hi := region[i][0], region[i][1]
			if lo < clo {
				lo = clo
			}
			if hi > chi {
				hi = chi
			}
			x.Chunk[i] = [2]int64{lo - clo, hi - clo}
			x.Buf[i] = [2]int64{lo - region[i][0], hi - region[i][0]}
		}
		out = append(out, x)

		// odometer increment over the chunk coordinate range
		i := rank - 1
		for ; i >= 0; i-- {
			coord[i]++
			if coord[i] <= last[i] {
				break
			}
			coord[i] = first[i]
		}
		if i < 0 {
			return out
		}
	}
}
