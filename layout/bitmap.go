package layout

import (
	"github.com/boljen/go-bitmap"
)

// BitView is a bounded, zero-copy view of a bitmap region: a packed bit
// array, LSB-first within each byte, wrapping the image bytes directly so
// Set/Clear persist to the mapping immediately.
type BitView struct {
	bm    bitmap.Bitmap
	count uint32
}

func newBitView(region []byte, count uint32) BitView {
	return BitView{bm: bitmap.Bitmap(region), count: count}
}

// Count is the number of meaningful bits in this view (inodes_count or
// blocks_count), independent of however many bytes the underlying region
// rounds up to.
func (v BitView) Count() uint32 {
	return v.count
}

// Test reads bit i, LSB-first.
func (v BitView) Test(i uint32) bool {
	return v.bm.Get(int(i))
}

// Set marks bit i. Idempotent: setting an already-set bit is a no-op error-
// wise.
func (v BitView) Set(i uint32) {
	v.bm.Set(int(i), true)
}

// Clear unmarks bit i. Idempotent.
func (v BitView) Clear(i uint32) {
	v.bm.Set(int(i), false)
}

// CountClear returns the number of clear bits among indices [0, Count()).
func (v BitView) CountClear() uint32 {
	var n uint32
	for i := uint32(0); i < v.count; i++ {
		if !v.Test(i) {
			n++
		}
	}
	return n
}
