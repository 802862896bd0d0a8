package building

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/door"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/mesh"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/registry"
	"github.com/Ko-stant/building-engine/internal/roof"
	"github.com/Ko-stant/building-engine/internal/wall"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoRegistry     = errors.New("no asset registry configured")
	ErrUnsafePath     = errors.New("path escapes its base directory")
)

type WallResult struct {
	AssetName string          `json:"asset_name"`
	File      string          `json:"file"`
	Slots     []geometry.Slot `json:"slots"`
	Tags      []string        `json:"tags"`
}

type DoorResult struct {
	AssetName string     `json:"asset_name"`
	File      string     `json:"file"`
	Door      *door.Door `json:"door"`
}

type BuildingResult struct {
	AssetName   string                `json:"asset_name"`
	Output      Output                `json:"output"`
	Manifest    Manifest              `json:"manifest"`
	Rooms       int                   `json:"rooms"`
	Walls       int                   `json:"walls"`
	Connections []geometry.Connection `json:"connections"`
	Stats       mesh.Stats            `json:"mesh_stats"`
	AABB        geometry.AABB         `json:"aabb"`
}

type RoofResult struct {
	Type     roof.Type     `json:"type"`
	Height   float64       `json:"height"`
	Pitch    roof.Pitch    `json:"pitch"`
	Geometry roof.Geometry `json:"geometry"`
}

// Executor runs protocol commands and records what they create in the registry.
// Registry may be nil; assets are then built but not recorded and place_asset
// fails.
type Executor struct {
	Settings config.Settings
	Registry *registry.Store
	Export   ExportSettings
	// ExportRoot, when set, confines generate_building output to ExportRoot/<name>
	// and the spec's output_dir is ignored.
	ExportRoot string
	Logger     *slog.Logger
	Progress   func(protocol.Progress)
}

func NewExecutor(s config.Settings, reg *registry.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{Settings: s, Registry: reg, Export: DefaultExportSettings(), Logger: logger}
}

// Execute runs cmd and reports the outcome as a result; it never panics on bad
// input and never returns a Go error.
func (e *Executor) Execute(ctx context.Context, cmd protocol.Command) protocol.Result {
	ctx, span := tracer.Start(ctx, "building.Execute",
		trace.WithAttributes(attribute.String("command", cmd.Command), attribute.String("request.id", cmd.ID)),
	)
	defer span.End()

	v, err := e.run(ctx, cmd)
	res := protocol.Success(cmd.ID, v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.Logger.Warn("command failed", "command", cmd.Command, "id", cmd.ID, "error", err)
		res = protocol.Failure(cmd.ID, err)
	} else {
		e.Logger.Info("command done", "command", cmd.Command, "id", cmd.ID)
	}
	commandsTotal.WithLabelValues(cmd.Command, res.Status).Inc()
	return res
}

func (e *Executor) run(ctx context.Context, cmd protocol.Command) (any, error) {
	switch cmd.Command {
	case protocol.CmdCreateWall:
		return e.createWall(ctx, cmd)
	case protocol.CmdCreateDoor:
		return e.createDoor(ctx, cmd)
	case protocol.CmdGenerateBuilding:
		return e.generateBuilding(ctx, cmd)
	case protocol.CmdBuildRoof:
		return e.buildRoof(cmd)
	case protocol.CmdPlaceAsset:
		return e.placeAsset(ctx, cmd)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Command)
	}
}

func (e *Executor) register(ctx context.Context, a registry.Asset) error {
	if e.Registry == nil {
		e.Logger.Debug("registry disabled, asset not recorded", "asset", a.Name)
		return nil
	}
	if _, err := e.Registry.Put(ctx, a); err != nil {
		return fmt.Errorf("register %s: %w", a.Name, err)
	}
	return nil
}

// within joins name onto base and fails if the result is not inside base.
func within(base, name string) (string, error) {
	if !protocol.SafeName(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	path := filepath.Join(base, name)
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q under %s", ErrUnsafePath, name, base)
	}
	return path, nil
}

func (e *Executor) libraryFile(name, ext string) (string, error) {
	path, err := within(e.Settings.LibraryDir, name+ext)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Settings.LibraryDir, 0o755); err != nil {
		return "", fmt.Errorf("create library %s: %w", e.Settings.LibraryDir, err)
	}
	return path, nil
}

func (e *Executor) createWall(ctx context.Context, cmd protocol.Command) (any, error) {
	a := protocol.WallAsset{Name: "GenWall", Dimensions: protocol.Dimensions{Width: 4.0}}
	if err := cmd.DecodeAsset(&a); err != nil {
		return nil, err
	}
	w, m, err := wall.Build(a.Name, a.Dimensions.Width, cmd.Seed, e.Settings)
	if err != nil {
		return nil, err
	}
	tags := a.Tags
	if len(tags) == 0 {
		tags = w.Tags
	}
	file, err := e.libraryFile(a.Name, ".mesh.json")
	if err != nil {
		return nil, err
	}
	if err := writeJSON(file, m); err != nil {
		return nil, err
	}
	err = e.register(ctx, registry.Asset{
		Name:       a.Name,
		Kind:       "wall",
		Tags:       tags,
		Dimensions: registry.Dimensions{Width: w.Length, Height: w.Height, Depth: w.Thickness},
		Slots:      w.Slots,
		Seed:       cmd.Seed,
		File:       file,
	})
	if err != nil {
		return nil, err
	}
	return WallResult{AssetName: a.Name, File: file, Slots: w.Slots, Tags: tags}, nil
}

func (e *Executor) createDoor(ctx context.Context, cmd protocol.Command) (any, error) {
	a := protocol.DoorAsset{Name: "GenDoor", Style: "single", Material: "wood", Swing: "inward_left"}
	if err := cmd.DecodeAsset(&a); err != nil {
		return nil, err
	}
	pos := geometry.Vec3{X: a.Position[0], Y: a.Position[1], Z: a.Position[2]}
	d, err := door.Build(a.Style, a.Material, a.Swing, a.Name, pos, e.Settings)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode door %s: %w", a.Name, err)
	}
	file, err := e.libraryFile(a.Name, ".door.json")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", file, err)
	}
	err = e.register(ctx, registry.Asset{
		Name:       a.Name,
		Kind:       "door",
		Tags:       d.Tags,
		Dimensions: registry.Dimensions{Width: d.Meta.WidthM, Height: d.Meta.HeightM, Depth: door.FrameDepth},
		Slots:      d.Slots,
		Seed:       cmd.Seed,
		File:       file,
		Data:       data,
	})
	if err != nil {
		return nil, err
	}
	return DoorResult{AssetName: a.Name, File: file, Door: d}, nil
}

func (e *Executor) generateBuilding(ctx context.Context, cmd protocol.Command) (any, error) {
	spec := DefaultSpec()
	if err := cmd.DecodeSpec(&spec); err != nil {
		return nil, err
	}
	if cmd.Seed != 0 {
		spec.Seed = cmd.Seed
	}

	g := NewGenerator(e.Settings, e.Logger)
	if e.Progress != nil {
		g.Progress = func(p protocol.Progress) {
			p.RequestID = cmd.ID
			e.Progress(p)
		}
	}
	b, err := g.Generate(ctx, spec)
	if err != nil {
		return nil, err
	}
	dir := spec.OutputDir
	if e.ExportRoot != "" {
		if dir, err = within(e.ExportRoot, spec.Name); err != nil {
			return nil, err
		}
	}
	out, err := Write(dir, b, e.Export)
	if err != nil {
		return nil, err
	}

	size := b.AABB.Size()
	err = e.register(ctx, registry.Asset{
		Name: b.Name,
		Kind: "building",
		Tags: []string{
			"arch_building",
			"roof_" + spec.Roof.String(),
			"floors_" + strconv.Itoa(spec.Floors),
		},
		Dimensions: registry.Dimensions{Width: size.X, Height: size.Z, Depth: size.Y},
		Seed:       spec.Seed,
		File:       out.Building,
	})
	if err != nil {
		return nil, err
	}
	return BuildingResult{
		AssetName:   b.Name,
		Output:      out,
		Manifest:    out.Export,
		Rooms:       len(b.Plan.Rooms),
		Walls:       len(b.Walls),
		Connections: b.Connections,
		Stats:       b.Stats,
		AABB:        b.AABB,
	}, nil
}

func (e *Executor) buildRoof(cmd protocol.Command) (any, error) {
	r := protocol.RoofSpec{Width: 10, Depth: 8, Roof: "flat"}
	if err := cmd.DecodeSpec(&r); err != nil {
		return nil, err
	}
	t := roof.ParseType(r.Roof)
	pitch := roof.Trig(r.Width, r.Pitch)
	height := r.Height
	switch {
	case height > 0:
	case r.Pitch > 0:
		height = pitch.Height
	default:
		height = e.Settings.RoofHeight
	}
	fp := geometry.Rect{MaxX: r.Width, MaxY: r.Depth}
	return RoofResult{Type: t, Height: height, Pitch: pitch, Geometry: roof.Build(fp, r.Base, height, t)}, nil
}

func (e *Executor) placeAsset(ctx context.Context, cmd protocol.Command) (any, error) {
	if e.Registry == nil {
		return nil, ErrNoRegistry
	}
	var p protocol.PlaceAsset
	if err := cmd.DecodeAsset(&p); err != nil {
		return nil, err
	}
	return registry.Placer{Store: e.Registry}.PlaceOnSlot(ctx, p.Parent, p.Slot, p.Tags)
}
