package building

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ko-stant/building-engine/internal/plan"
	"github.com/Ko-stant/building-engine/internal/protocol"
)

// ExportSettings are the options a host exporter is expected to apply when it
// turns the generated mesh into game-engine assets.
type ExportSettings struct {
	Format            string `json:"format"`
	YUp               bool   `json:"y_up"`
	ApplyModifiers    bool   `json:"apply_modifiers"`
	ApplyScale        bool   `json:"apply_scale"`
	SelectedOnly      bool   `json:"selected_only"`
	ColliderSuffix    string `json:"collider_suffix"`
	NavmeshCollection string `json:"navmesh_collection"`
}

func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Format:            "GLTF2",
		YUp:               true,
		ApplyModifiers:    true,
		ApplyScale:        true,
		SelectedOnly:      true,
		ColliderSuffix:    "-col",
		NavmeshCollection: "MF_Navmesh",
	}
}

// Manifest names the files a building exports to.
type Manifest struct {
	Building string         `json:"building"`
	Collider string         `json:"collider"`
	Navmesh  string         `json:"navmesh"`
	Settings ExportSettings `json:"settings"`
}

func NewManifest(name string, s ExportSettings) Manifest {
	return Manifest{
		Building: name + ".glb",
		Collider: name + s.ColliderSuffix + ".glb",
		Navmesh:  name + "_navmesh.glb",
		Settings: s,
	}
}

// Output lists the files Write produced.
type Output struct {
	Dir      string   `json:"dir"`
	Manifest string   `json:"manifest"`
	Mesh     string   `json:"mesh"`
	Building string   `json:"building"`
	GeoJSON  string   `json:"geojson"`
	DXF      string   `json:"dxf"`
	Export   Manifest `json:"export"`
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Sheet is the ground-floor plan drawing of b.
func (b *Building) Sheet() plan.Sheet {
	return plan.Sheet{Name: b.Name, Plan: b.Plan, Walls: b.Walls, Openings: b.Openings}
}

// Write stores b under dir: the export manifest, the welded mesh, the building
// description and the plan as GeoJSON and DXF.
func Write(dir string, b *Building, s ExportSettings) (Output, error) {
	if !protocol.SafeName(b.Name) {
		return Output{}, fmt.Errorf("%w: building name %q", ErrUnsafePath, b.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Output{}, fmt.Errorf("create output %s: %w", dir, err)
	}
	out := Output{
		Dir:      dir,
		Manifest: filepath.Join(dir, "manifest.json"),
		Mesh:     filepath.Join(dir, b.Name+".mesh.json"),
		Building: filepath.Join(dir, b.Name+".json"),
		GeoJSON:  filepath.Join(dir, b.Name+".plan.geojson"),
		DXF:      filepath.Join(dir, b.Name+".plan.dxf"),
		Export:   NewManifest(b.Name, s),
	}
	if err := writeJSON(out.Manifest, out.Export); err != nil {
		return Output{}, err
	}
	if err := writeJSON(out.Mesh, b.Mesh); err != nil {
		return Output{}, err
	}
	if err := writeJSON(out.Building, b); err != nil {
		return Output{}, err
	}
	sheet := b.Sheet()
	gj, err := sheet.GeoJSON()
	if err != nil {
		return Output{}, fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(out.GeoJSON, gj, 0o644); err != nil {
		return Output{}, fmt.Errorf("write %s: %w", out.GeoJSON, err)
	}
	if err := sheet.WriteDXF(out.DXF); err != nil {
		return Output{}, err
	}
	return out, nil
}
