package state

import (
	"github.com/dhconnelly/rtreego"

	"InkBoard/internal/geom"
)

// pad keeps zero-area boxes (dots, axis-parallel lines) valid for the
// R-tree, which rejects empty extents. Results are re-filtered exactly.
const pad = 1e-6

const (
	minChildren = 4
	maxChildren = 16
)

// entry is one stroke in the index. Its rect is fixed at insertion so the
// tree can locate it again on delete.
type entry struct {
	stroke *Stroke
	seq    uint64
	rect   rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// index is an R-tree over stroke bounding boxes.
type index struct {
	tree *rtreego.Rtree
}

func newIndex() *index {
	return &index{tree: rtreego.NewTree(2, minChildren, maxChildren)}
}

func toRTree(r geom.Rect) rtreego.Rect {
	box, err := rtreego.NewRectFromPoints(
		rtreego.Point{r.X - pad, r.Y - pad},
		rtreego.Point{r.MaxX() + pad, r.MaxY() + pad},
	)
	if err != nil {
		// Only reachable with NaN coordinates; index such strokes at the origin.
		box, _ = rtreego.NewRectFromPoints(rtreego.Point{-pad, -pad}, rtreego.Point{pad, pad})
	}
	return box
}

func (ix *index) insert(e *entry) {
	e.rect = toRTree(e.stroke.BoundingBox)
	ix.tree.Insert(e)
}

func (ix *index) remove(e *entry) bool {
	return ix.tree.Delete(e)
}

// search returns entries whose stroke box intersects r. The tree answers
// with padded boxes, so candidates are confirmed against the exact box.
func (ix *index) search(r geom.Rect) []*entry {
	hits := ix.tree.SearchIntersect(toRTree(r))
	out := make([]*entry, 0, len(hits))
	for _, h := range hits {
		e := h.(*entry)
		if e.stroke.BoundingBox.Intersects(r) {
			out = append(out, e)
		}
	}
	return out
}
