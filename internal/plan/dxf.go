package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"
)

// WriteDXF draws the sheet to path, one layer per feature kind. Rooms and the
// corridor are closed polylines, walls their centerlines, doors the span they
// open.
func (s Sheet) WriteDXF(path string) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	d.AddLayer(KindRoom, color.Cyan, dxf.DefaultLineType, false)
	d.AddLayer(KindCorridor, color.Yellow, dxf.DefaultLineType, false)
	d.AddLayer(KindWall, color.White, dxf.DefaultLineType, false)
	d.AddLayer(KindDoor, color.Red, dxf.DefaultLineType, false)

	for _, f := range s.Features().Features {
		var pts []orb.Point
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			pts = g[0]
		case orb.LineString:
			pts = g
		default:
			continue
		}
		kind, _ := f.Properties["kind"].(string)
		if err := d.ChangeLayer(kind); err != nil {
			return fmt.Errorf("dxf layer %s: %w", kind, err)
		}
		lwp := entity.NewLwPolyline(len(pts))
		for i, p := range pts {
			lwp.Vertices[i] = []float64{p[0], p[1]}
		}
		d.AddEntity(lwp)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf %s: %w", path, err)
	}
	return nil
}
