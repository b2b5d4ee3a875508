package geo

import "sort"

// Grid resolution defaults.
const (
	// FineGridRows is used when the hit count exceeds AdaptiveThreshold.
	FineGridRows = 16
	// CoarseGridRows is used otherwise.
	CoarseGridRows = 8
	// AdaptiveThreshold switches between the coarse and fine grid.
	AdaptiveThreshold = 1000
)

// Cluster summarizes the points that fell into one grid cell.
type Cluster struct {
	CellID int     `json:"cell_id"`
	Count  int     `json:"count"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// GridRows picks the grid resolution: requested when positive, otherwise
// fine above AdaptiveThreshold points and coarse below.
func GridRows(requested, points int) int {
	if requested > 0 {
		return requested
	}
	if points > AdaptiveThreshold {
		return FineGridRows
	}
	return CoarseGridRows
}

// ClusterPoints bins points into a rows x rows grid over box.
// Points outside the box are skipped. Clusters are returned ordered by cell id.
func ClusterPoints(box BoundingBox, rows int, points []Point) []Cluster {
	if rows <= 0 {
		rows = CoarseGridRows
	}

	cellW := (box.BottomRight.Lon - box.TopLeft.Lon) / float64(rows)
	cellH := (box.TopLeft.Lat - box.BottomRight.Lat) / float64(rows)
	if cellW <= 0 || cellH <= 0 {
		return nil
	}

	cells := make(map[int]*Cluster)
	for _, p := range points {
		if !box.Contains(p) {
			continue
		}
		col := min(int((p.Lon-box.TopLeft.Lon)/cellW), rows-1)
		row := min(int((box.TopLeft.Lat-p.Lat)/cellH), rows-1)
		id := row*rows + col

		c, ok := cells[id]
		if !ok {
			c = &Cluster{CellID: id}
			cells[id] = c
		}
		c.add(p)
	}

	out := make([]Cluster, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CellID < out[j].CellID })
	return out
}

// add folds p into the running centroid.
func (c *Cluster) add(p Point) {
	n := float64(c.Count)
	c.Lat = (c.Lat*n + p.Lat) / (n + 1)
	c.Lon = (c.Lon*n + p.Lon) / (n + 1)
	c.Count++
}
