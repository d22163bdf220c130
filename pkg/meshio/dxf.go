package meshio

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/skeleton"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layer names used by SaveSkeletonDXF.
const (
	LayerEdges = "SKELETON_EDGES"
	LayerRadii = "SKELETON_RADII"
)

// SaveSkeletonDXF writes s as a 2D drawing: each edge is a LINE on
// LayerEdges and each vertex a CIRCLE of its radius on LayerRadii.
// Vertices with a non-positive radius get no circle.
func SaveSkeletonDXF(path string, s *skeleton.Skeleton2D) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	pts := s.AllVerticesCoords()

	if _, err := d.AddLayer(LayerEdges, color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	for _, e := range s.Edges() {
		a, b := pts[e[0]], pts[e[1]]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("dxf: edge %v: %w", e, err)
		}
	}

	if _, err := d.AddLayer(LayerRadii, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	for i, r := range s.AllRadii() {
		if r <= 0 {
			continue
		}
		if _, err := d.Circle(pts[i][0], pts[i][1], 0, r); err != nil {
			return fmt.Errorf("dxf: vertex %d: %w", i, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("dxf: save %s: %w", path, err)
	}
	return nil
}
