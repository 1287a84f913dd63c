// Package geom provides pixel-space bounding box arithmetic shared by the
// grouping pipeline. All geometry here is integer pixel space with origin
// at top-left, x increasing right, y increasing down.
package geom

// BBox is an axis-aligned bounding box with x0<=x1 and y0<=y1.
type BBox struct {
	X0, Y0, X1, Y1 int
}

// New returns a BBox, swapping endpoints so X0<=X1 and Y0<=Y1 are
// satisfied. It does not decide whether the result is empty; callers that
// care about repair warnings should compare the input against the result.
func New(x0, y0, x1, y1 int) BBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Swapped reports whether constructing a BBox from these raw endpoints
// required swapping x or y, without performing the swap.
func Swapped(x0, y0, x1, y1 int) bool {
	return x0 > x1 || y0 > y1
}

// Width returns x1-x0.
func (b BBox) Width() int { return b.X1 - b.X0 }

// Height returns y1-y0.
func (b BBox) Height() int { return b.Y1 - b.Y0 }

// Area returns the box area; zero for a degenerate box.
func (b BBox) Area() int { return b.Width() * b.Height() }

// IsZeroArea reports whether the box has no positive extent on either
// axis. Negative extents count too, so an unrepaired swapped box is
// caught by the same gate.
func (b BBox) IsZeroArea() bool { return b.Width() <= 0 || b.Height() <= 0 }

// YCenter returns the vertical midpoint, matching spec's
// y_center = (y0+y1)/2 definition.
func (b BBox) YCenter() float64 { return float64(b.Y0+b.Y1) / 2 }

// Union returns the smallest box containing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: minInt(b.X0, other.X0),
		Y0: minInt(b.Y0, other.Y0),
		X1: maxInt(b.X1, other.X1),
		Y1: maxInt(b.Y1, other.Y1),
	}
}

// UnionAll returns the union of a non-empty slice of boxes. Panics on an
// empty slice; callers must guard for that case since an empty union has
// no sensible coordinate.
func UnionAll(boxes []BBox) BBox {
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u
}

// intersectionHeight returns the overlap length of the two boxes' vertical
// extents, clamped to zero when they do not overlap.
func intersectionHeight(a, b BBox) int {
	top := maxInt(a.Y0, b.Y0)
	bottom := minInt(a.Y1, b.Y1)
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// intersectionWidth returns the overlap length of the two boxes' horizontal
// extents, clamped to zero when they do not overlap.
func intersectionWidth(a, b BBox) int {
	left := maxInt(a.X0, b.X0)
	right := minInt(a.X1, b.X1)
	if right <= left {
		return 0
	}
	return right - left
}

// YOverlapRatio returns the vertical overlap of a and b as a ratio of
// the smaller of the two heights (overlap over min-height, which is the
// reading line_y_overlap_threshold is compared against). Returns 0 when
// either box has zero height.
func YOverlapRatio(a, b BBox) float64 {
	ha, hb := a.Height(), b.Height()
	minH := minInt(ha, hb)
	if minH <= 0 {
		return 0
	}
	return float64(intersectionHeight(a, b)) / float64(minH)
}

// XOverlapRatio returns the horizontal overlap of a and b as a ratio of
// the smaller of the two widths.
func XOverlapRatio(a, b BBox) float64 {
	wa, wb := a.Width(), b.Width()
	minW := minInt(wa, wb)
	if minW <= 0 {
		return 0
	}
	return float64(intersectionWidth(a, b)) / float64(minW)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
