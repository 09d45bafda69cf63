package grid

// CopyRegion copies a rectangular block of elements between two row-major
// buffers. dstOrigin/srcOrigin locate the block in each buffer, size is
// the block extent, elemSize the element width in bytes.
//
// This is the single splice primitive behind every read gather and every
// read-modify-write: all callers go through here so the boundary cases
// live in one place.
func CopyRegion(dst []byte, dstShape, dstOrigin []int64, src []byte, srcShape, srcOrigin []int64, size []int64, elemSize int) {
	rank := len(size)
	if rank == 0 {
		copy(dst[:elemSize], src[:elemSize])
		return
	}
	for _, s := range size {
		if s <= 0 {
			return
		}
	}

	dstStride := rowStrides(dstShape)
	srcStride := rowStrides(srcShape)

	rowBytes := size[rank-1] * int64(elemSize)
	idx := make([]int64, rank-1)

	for {
		dstOff := int64(0)
		srcOff := int64(0)
		for i := 0; i < rank-1; i++ {
			dstOff += (dstOrigin[i] + idx[i]) * dstStride[i]
			srcOff += (srcOrigin[i] + idx[i]) * srcStride[i]
		}
		dstOff += dstOrigin[rank-1]
		srcOff += srcOrigin[rank-1]
		dstOff *= int64(elemSize)
		srcOff *= int64(elemSize)

		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])

		i := rank - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < size[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// rowStrides returns the element stride of each dimension in a row-major
// buffer of the given shape. The last dimension always has stride 1 and
// is folded into the row copy by the caller.
func rowStrides(shape []int64) []int64 {
	strides := make([]int64, len(shape))
	acc := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// FillPattern tiles a buffer with the byte pattern of one element.
func FillPattern(buf []byte, elem []byte) {
	if len(elem) == 0 || len(buf) == 0 {
		return
	}
	n := copy(buf, elem)
	for n < len(buf) {
		n += copy(buf[n:], buf[:n])
	}
}
