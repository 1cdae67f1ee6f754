package facematch

// BBox is a bounding box in [x1, y1, x2, y2] corner format.
type BBox [4]float64

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b[2] - b[0] }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b[3] - b[1] }

// Scale multiplies every coordinate by factor.
func (b BBox) Scale(factor float64) BBox {
	return BBox{b[0] * factor, b[1] * factor, b[2] * factor, b[3] * factor}
}

// ComputeIoU calculates Intersection over Union between two bounding boxes
// in the same coordinate system.
func ComputeIoU(a, b BBox) float64 {
	// Calculate intersection.
	x1 := max(a[0], b[0])
	y1 := max(a[1], b[1])
	x2 := min(a[2], b[2])
	y2 := min(a[3], b[3])

	if x2 <= x1 || y2 <= y1 {
		return 0 // No intersection
	}

	intersection := (x2 - x1) * (y2 - y1)

	// Calculate union.
	union := a.Width()*a.Height() + b.Width()*b.Height() - intersection
	if union <= 0 {
		return 0
	}

	return intersection / union
}

// BestOverlap returns the index of the box in candidates with the highest IoU
// against target, or -1 when none reaches minIoU.
func BestOverlap(target BBox, candidates []BBox, minIoU float64) int {
	best := -1
	bestIoU := minIoU
	for i, c := range candidates {
		iou := ComputeIoU(target, c)
		if iou >= bestIoU {
			if best == -1 || iou > bestIoU {
				best = i
				bestIoU = iou
			}
		}
	}
	return best
}
