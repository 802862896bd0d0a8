package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/spf13/cobra"

	"github.com/Ko-stant/building-engine/internal/building"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/roof"
)

type generateFlags struct {
	name    string
	width   float64
	depth   float64
	floors  int
	seed    int64
	roof    string
	pitch   float64
	output  string
	plan    string
	specURL string
	batch   string
	jobs    int
	jsonOut bool
}

func (a *app) generateCmd() *cobra.Command {
	def := building.DefaultSpec()
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a building and write its mesh, plan and export manifest",
		Example: `  buildgen generate --width 24 --depth 18 --floors 3 --roof hip --seed 7
  buildgen generate --plan studio.json --roof gabled
  buildgen generate --spec-url https://example.com/specs/tower.json
  buildgen generate --batch district.json --jobs 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.batch != "" {
				return a.generateBatch(cmd, f)
			}
			spec, err := f.spec(cmd)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(spec)
			if err != nil {
				return err
			}
			res, err := a.execute(cmd, protocol.Command{Command: protocol.CmdGenerateBuilding, Spec: raw})
			if err != nil {
				return err
			}
			if f.jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			br, ok := res.Result.(building.BuildingResult)
			if !ok {
				return fmt.Errorf("unexpected result %T", res.Result)
			}
			a.summary(cmd.OutOrStdout(), br.AssetName, spec, br.Rooms, br.Walls, br.AABB, br.Output)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.name, "name", "n", def.Name, "building name, used for file names")
	fl.Float64VarP(&f.width, "width", "W", def.Width, "footprint width in meters")
	fl.Float64VarP(&f.depth, "depth", "D", def.Depth, "footprint depth in meters")
	fl.IntVarP(&f.floors, "floors", "f", def.Floors, "number of stories")
	fl.Int64VarP(&f.seed, "seed", "s", def.Seed, "layout seed")
	fl.StringVarP(&f.roof, "roof", "r", def.Roof.String(), "roof type: flat, hip, gabled or shed")
	fl.Float64Var(&f.pitch, "pitch", 0, "roof pitch in degrees, overrides the configured roof height")
	fl.StringVarP(&f.output, "output", "o", def.OutputDir, "output directory")
	fl.StringVar(&f.plan, "plan", "", "floor plan JSON file used instead of the generated layout")
	fl.StringVar(&f.specURL, "spec-url", "", "fetch the building spec JSON from a URL or path (flags override it)")
	fl.StringVar(&f.batch, "batch", "", "JSON file holding an array of building specs")
	fl.IntVarP(&f.jobs, "jobs", "j", 0, "concurrent generations for --batch (0 = GOMAXPROCS)")
	fl.BoolVar(&f.jsonOut, "json", false, "print the command result as JSON")
	cmd.MarkFlagsMutuallyExclusive("batch", "spec-url")
	cmd.MarkFlagsMutuallyExclusive("batch", "plan")
	return cmd
}

// spec starts from the fetched spec (or the default) and applies every flag the
// user set explicitly.
func (f *generateFlags) spec(cmd *cobra.Command) (building.Spec, error) {
	spec := building.DefaultSpec()
	if f.specURL != "" {
		fetched, err := fetchSpec(cmd.Context(), f.specURL)
		if err != nil {
			return spec, err
		}
		spec = fetched
	}
	fl := cmd.Flags()
	if fl.Changed("name") || f.specURL == "" {
		spec.Name = f.name
	}
	if fl.Changed("width") || f.specURL == "" {
		spec.Width = f.width
	}
	if fl.Changed("depth") || f.specURL == "" {
		spec.Depth = f.depth
	}
	if fl.Changed("floors") || f.specURL == "" {
		spec.Floors = f.floors
	}
	if fl.Changed("seed") || f.specURL == "" {
		spec.Seed = f.seed
	}
	if fl.Changed("pitch") {
		spec.RoofPitch = f.pitch
	}
	if fl.Changed("output") || f.specURL == "" {
		spec.OutputDir = f.output
	}
	if fl.Changed("roof") || f.specURL == "" {
		t, err := roof.ParseTypeStrict(f.roof)
		if err != nil {
			return spec, err
		}
		spec.Roof = t
	}
	if f.plan != "" {
		def, err := geometry.LoadPlanFromFile(f.plan)
		if err != nil {
			return spec, err
		}
		spec.Plan = def
	}
	return spec, nil
}

// fetchSpec downloads a spec file with go-getter, so src may be a local path, an
// http(s) URL or any other source go-getter understands.
func fetchSpec(ctx context.Context, src string) (building.Spec, error) {
	dir, err := os.MkdirTemp("", "buildgen-spec-")
	if err != nil {
		return building.Spec{}, err
	}
	defer os.RemoveAll(dir)

	pwd, err := os.Getwd()
	if err != nil {
		return building.Spec{}, err
	}
	dst := filepath.Join(dir, "spec.json")
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return building.Spec{}, fmt.Errorf("fetch spec %s: %w", src, err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return building.Spec{}, err
	}
	spec := building.DefaultSpec()
	if err := json.Unmarshal(data, &spec); err != nil {
		return building.Spec{}, fmt.Errorf("decode spec %s: %w", src, err)
	}
	return spec, nil
}

// readBatch decodes each spec over the defaults. Specs without an output
// directory write to <output>/<name>.
func readBatch(path, output string) ([]building.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", path, err)
	}
	specs := make([]building.Spec, 0, len(raws))
	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		spec := building.DefaultSpec()
		spec.OutputDir = ""
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, fmt.Errorf("decode batch %s entry %d: %w", path, i, err)
		}
		if spec.OutputDir == "" {
			spec.OutputDir = filepath.Join(output, spec.Name)
		}
		key := filepath.Join(spec.OutputDir, spec.Name)
		if j, dup := seen[key]; dup {
			return nil, fmt.Errorf("batch %s: entries %d and %d both write %s", path, j, i, key)
		}
		seen[key] = i
		specs = append(specs, spec)
	}
	return specs, nil
}

func (a *app) generateBatch(cmd *cobra.Command, f *generateFlags) error {
	specs, err := readBatch(f.batch, f.output)
	if err != nil {
		return err
	}
	buildings, err := building.NewGenerator(a.settings, a.logger).GenerateBatch(cmd.Context(), specs, f.jobs)
	if err != nil {
		return err
	}
	outputs := make([]building.Output, len(buildings))
	for i, b := range buildings {
		out, err := building.Write(b.Spec.OutputDir, b, building.DefaultExportSettings())
		if err != nil {
			return err
		}
		outputs[i] = out
	}
	if f.jsonOut {
		return printJSON(cmd.OutOrStdout(), outputs)
	}
	w := cmd.OutOrStdout()
	for i, b := range buildings {
		a.summary(w, b.Name, b.Spec, len(b.Plan.Rooms), len(b.Walls), b.AABB, outputs[i])
	}
	a.style.done(w, fmt.Sprintf("%d buildings generated", len(buildings)))
	return nil
}

func (a *app) summary(w io.Writer, name string, spec building.Spec, rooms, walls int, box geometry.AABB, out building.Output) {
	size := box.Size()
	a.style.heading(w, name)
	a.style.field(w, "roof", spec.Roof.String())
	a.style.field(w, "floors", spec.Floors)
	a.style.field(w, "rooms", rooms)
	a.style.field(w, "walls", walls)
	a.style.field(w, "size", fmt.Sprintf("%.2f x %.2f x %.2f m", size.X, size.Y, size.Z))
	a.style.field(w, "output", out.Dir)
	a.style.done(w, "wrote "+filepath.Base(out.Building))
}
