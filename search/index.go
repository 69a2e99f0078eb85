package search

import (
	"github.com/dhconnelly/rtreego"
)

// Entry is one discovered granule's along-track geographic envelope,
// lightweight enough to build from a granule's metadata/quick-look
// attributes without opening its full photon/footprint variables.
type Entry struct {
	URI           string
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// Bounds implements rtreego.Spatial.
func (e Entry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.MinLon, e.MinLat}
	lengths := []float64{
		maxFloat(e.MaxLon-e.MinLon, minRectSpan),
		maxFloat(e.MaxLat-e.MinLat, minRectSpan),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// minRectSpan keeps a degenerate (point-like) granule envelope from
// producing a zero-volume rectangle rtreego.NewRect rejects.
const minRectSpan = 1e-9

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Index is a bounding-box R-tree over discovered granules, so a
// caller can ask "which granules intersect this ROI" before opening
// any of them.
type Index struct {
	tree  *rtreego.Rtree
	count int
}

// NewIndex builds a spatial index over entries. Branching factors
// (25, 50) match typical R-tree defaults for a few thousand entries.
func NewIndex(entries []Entry) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		tree.Insert(e)
	}
	return &Index{tree: tree, count: len(entries)}
}

// Query returns every granule whose envelope intersects
// [minLon,maxLon] x [minLat,maxLat].
func (idx *Index) Query(minLon, minLat, maxLon, maxLat float64) ([]Entry, error) {
	point := rtreego.Point{minLon, minLat}
	lengths := []float64{
		maxFloat(maxLon-minLon, minRectSpan),
		maxFloat(maxLat-minLat, minRectSpan),
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil, err
	}

	spatials := idx.tree.SearchIntersect(rect)
	out := make([]Entry, 0, len(spatials))
	for _, s := range spatials {
		out = append(out, s.(Entry))
	}
	return out, nil
}

// Len reports the number of granules currently indexed.
func (idx *Index) Len() int { return idx.count }
