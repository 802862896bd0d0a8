package building

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/mesh"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/roof"
	"github.com/Ko-stant/building-engine/internal/seed"
)

// LayoutSubsystem names the random stream room splits draw from.
const LayoutSubsystem = "room_split"

// Pipeline stages reported through progress events, in order.
const (
	StageLayout = "layout"
	StageCarve  = "carve"
	StageSlabs  = "slabs"
	StageRoof   = "roof"
	StageMesh   = "mesh"
)

var stages = []string{StageLayout, StageCarve, StageSlabs, StageRoof, StageMesh}

// Building is the result of one generation run. Every story shares the same plan.
type Building struct {
	Name         string                 `json:"name"`
	Spec         Spec                   `json:"spec"`
	Plan         geometry.FloorPlan     `json:"plan"`
	Openings     []geometry.DoorOpening `json:"openings"`
	Connections  []geometry.Connection  `json:"connections"`
	Walls        []geometry.WallSegment `json:"walls"`
	FloorZ       []float64              `json:"floor_z"`
	Slabs        []geometry.Slab        `json:"slabs"`
	RoofHeight   float64                `json:"roof_height"`
	Roof         roof.Geometry          `json:"roof"`
	WallsEmitted int                    `json:"walls_emitted"`
	Stats        mesh.Stats             `json:"mesh_stats"`
	AABB         geometry.AABB          `json:"aabb"`
	Mesh         *mesh.Mesh             `json:"-"`
}

// Generator runs the pipeline with fixed settings. Progress, when set, receives an
// event after each stage; it is called from the generating goroutine.
type Generator struct {
	Settings config.Settings
	Logger   *slog.Logger
	Progress func(protocol.Progress)
}

// NewGenerator returns a generator that logs to logger, or nowhere when nil.
func NewGenerator(s config.Settings, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{Settings: s, Logger: logger}
}

// Generate builds spec with s and no logging.
func Generate(ctx context.Context, spec Spec, s config.Settings) (*Building, error) {
	return NewGenerator(s, nil).Generate(ctx, spec)
}

func (g *Generator) report(spec Spec, stage string, done int) {
	if g.Progress == nil {
		return
	}
	g.Progress(protocol.Progress{Building: spec.Name, Stage: stage, Done: done, Total: len(stages)})
}

// Generate runs layout, opening derivation, carving, slabs, roof and meshing for
// spec. The result depends only on spec and the settings.
func (g *Generator) Generate(ctx context.Context, spec Spec) (b *Building, err error) {
	start := time.Now()
	ctx, span := startGenerateSpan(ctx, spec)
	defer span.End()
	defer func() {
		recordGenerate(spec, b, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			g.Logger.Warn("building generation failed", "building", spec.Name, "error", err)
		}
	}()

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	s := g.Settings
	wallHeight := s.StoryHeight - s.SlabThickness
	b = &Building{Name: spec.Name, Spec: spec}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageLayout, func(context.Context) error { return g.layout(spec, b, wallHeight) }},
		{StageCarve, func(context.Context) error {
			mirrored := geometry.MirrorOpenings(b.Plan, b.Openings, s.WallThickness)
			b.Walls = geometry.UniqueWalls(geometry.Carve(b.Plan.Walls, mirrored, s.Epsilon), s.Epsilon)
			b.Connections = geometry.Connections(b.Plan, b.Openings, s.WallThickness)
			return nil
		}},
		{StageSlabs, func(context.Context) error {
			fp := spec.Footprint()
			b.Slabs = geometry.BuildSlabs(fp, spec.Floors, s.StoryHeight, s.SlabThickness)
			for i := range spec.Floors {
				b.FloorZ = append(b.FloorZ, float64(i)*s.StoryHeight+s.SlabThickness)
			}
			return nil
		}},
		{StageRoof, func(context.Context) error {
			fp := spec.Footprint()
			rb := roof.NewBuilder(s)
			if spec.RoofPitch > 0 {
				rb.Height = roof.HeightForPitch(fp.Width(), spec.RoofPitch)
			}
			b.RoofHeight = rb.Height
			b.Roof = rb.Build(fp, geometry.RoofBase(spec.Floors, s.StoryHeight, s.SlabThickness), spec.Roof)
			return nil
		}},
		{StageMesh, func(context.Context) error { return g.mesh(b) }},
	}

	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stage(ctx, st.name, st.fn); err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		g.report(spec, st.name, i+1)
	}

	span.SetAttributes(
		attribute.Int("building.rooms", len(b.Plan.Rooms)),
		attribute.Int("building.walls", len(b.Walls)),
		attribute.Int("building.faces", len(b.Mesh.Faces)),
	)
	g.Logger.Info("building generated",
		"building", spec.Name,
		"rooms", len(b.Plan.Rooms),
		"openings", len(b.Openings),
		"walls", len(b.Walls),
		"faces", len(b.Mesh.Faces),
		"duration", time.Since(start),
	)
	return b, nil
}

func (g *Generator) layout(spec Spec, b *Building, wallHeight float64) error {
	s := g.Settings
	if spec.Plan != nil {
		b.Plan = spec.Plan.FloorPlan(wallHeight, s.WallThickness)
		b.Openings = geometry.DeriveCorridorOpenings(b.Plan.Facing, b.Plan.Rects(), s.DoorWidth, s.DoorHeight)
		b.Openings = append(b.Openings, spec.Plan.Openings(s.DoorWidth, s.DoorHeight)...)
		return nil
	}
	params := geometry.LayoutParams{
		CorridorWidth:   s.CorridorWidth,
		MinRoomWidth:    s.MinRoomWidth,
		WallHeight:      wallHeight,
		WallThickness:   s.WallThickness,
		GridUnit:        s.GridUnit,
		GoldenVariation: s.GoldenVariation,
	}
	plan, err := geometry.CorridorsAndRooms(spec.Footprint(), params, seed.For(spec.Seed, LayoutSubsystem))
	if err != nil {
		return err
	}
	b.Plan = plan
	b.Openings = geometry.DeriveCorridorOpenings(plan.Facing, plan.Rects(), s.DoorWidth, s.DoorHeight)
	return nil
}

func (g *Generator) mesh(b *Building) error {
	m := mesh.New(b.Name)
	for _, z := range b.FloorZ {
		b.WallsEmitted += mesh.EmitWalls(m, b.Walls, z)
	}
	mesh.EmitSlabs(m, b.Slabs)
	// A flat roof is the top slab's upper face.
	if b.Roof.Type != roof.Flat {
		mesh.EmitRoof(m, b.Roof)
	}
	b.Stats = m.MergeAndCleanup(g.Settings.MergeDistance)
	b.Mesh = m
	b.AABB = m.AABB().Round(g.Settings.ExportPrecision)
	return nil
}
