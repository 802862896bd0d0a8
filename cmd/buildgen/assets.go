package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/protocol"
)

// command marshals the asset and spec payloads into a protocol command.
func command(name string, seed int64, asset, spec any) (protocol.Command, error) {
	c := protocol.Command{Command: name, Seed: seed}
	var err error
	if asset != nil {
		if c.Asset, err = json.Marshal(asset); err != nil {
			return c, err
		}
	}
	if spec != nil {
		if c.Spec, err = json.Marshal(spec); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (a *app) runAndPrint(cmd *cobra.Command, c protocol.Command, err error) error {
	if err != nil {
		return err
	}
	res, err := a.execute(cmd, c)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res.Result)
}

func (a *app) createCmd() *cobra.Command {
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a single wall or door asset in the library",
	}

	var (
		wall     protocol.WallAsset
		wallSeed int64
	)
	wallCmd := &cobra.Command{
		Use:   "wall",
		Short: "Create a wall with evenly spaced window slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := command(protocol.CmdCreateWall, wallSeed, wall, nil)
			return a.runAndPrint(cmd, c, err)
		},
	}
	wallCmd.Flags().StringVarP(&wall.Name, "name", "n", "GenWall", "asset name")
	wallCmd.Flags().Float64VarP(&wall.Dimensions.Width, "width", "W", 4.0, "wall length in meters")
	wallCmd.Flags().StringSliceVarP(&wall.Tags, "tags", "t", nil, "tags recorded instead of the generated ones")
	wallCmd.Flags().Int64VarP(&wallSeed, "seed", "s", 0, "seed")

	var (
		door protocol.DoorAsset
		pos  []float64
	)
	doorCmd := &cobra.Command{
		Use:   "door",
		Short: "Create a framed door with hinge, knob and wall slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(pos) != 3 {
				return fmt.Errorf("--position needs x,y,z, got %d values", len(pos))
			}
			copy(door.Position[:], pos)
			c, err := command(protocol.CmdCreateDoor, 0, door, nil)
			return a.runAndPrint(cmd, c, err)
		},
	}
	doorCmd.Flags().StringVarP(&door.Name, "name", "n", "GenDoor", "asset name")
	doorCmd.Flags().StringVar(&door.Style, "style", "single", "door style: "+strings.Join(config.Default().DoorStyles(), ", "))
	doorCmd.Flags().StringVar(&door.Material, "material", "wood", "leaf material")
	doorCmd.Flags().StringVar(&door.Swing, "swing", "inward_left", "swing direction")
	doorCmd.Flags().Float64SliceVar(&pos, "position", []float64{0, 0, 0}, "x,y,z of the frame's lower left corner")

	create.AddCommand(wallCmd, doorCmd)
	return create
}

func (a *app) roofCmd() *cobra.Command {
	r := protocol.RoofSpec{}
	cmd := &cobra.Command{
		Use:   "roof",
		Short: "Build a standalone roof over a rectangle and print its faces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := command(protocol.CmdBuildRoof, 0, nil, r)
			return a.runAndPrint(cmd, c, err)
		},
	}
	cmd.Flags().Float64VarP(&r.Width, "width", "W", 10, "footprint width")
	cmd.Flags().Float64VarP(&r.Depth, "depth", "D", 8, "footprint depth")
	cmd.Flags().StringVarP(&r.Roof, "type", "r", "flat", "roof type; unknown names build a flat roof")
	cmd.Flags().Float64Var(&r.Base, "base", 0, "height of the roof base")
	cmd.Flags().Float64Var(&r.Height, "height", 0, "ridge height above the base (0 = pitch or configured height)")
	cmd.Flags().Float64Var(&r.Pitch, "pitch", 0, "pitch in degrees")
	return cmd
}

func (a *app) placeCmd() *cobra.Command {
	p := protocol.PlaceAsset{}
	cmd := &cobra.Command{
		Use:   "place PARENT SLOT",
		Short: "Place the first registered asset carrying --tags on a free slot of PARENT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Parent, p.Slot = args[0], args[1]
			c, err := command(protocol.CmdPlaceAsset, 0, p, nil)
			return a.runAndPrint(cmd, c, err)
		},
	}
	cmd.Flags().StringSliceVarP(&p.Tags, "tags", "t", nil, "tags the placed asset must carry")
	_ = cmd.MarkFlagRequired("tags")
	return cmd
}

func (a *app) registryCmd() *cobra.Command {
	reg := &cobra.Command{
		Use:     "registry",
		Aliases: []string{"reg"},
		Short:   "Inspect the asset registry",
	}

	var tags []string
	list := &cobra.Command{
		Use:   "list",
		Short: "List assets, optionally only those carrying every --tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeReg, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer closeReg()
			if store == nil {
				return fmt.Errorf("registry disabled by --no-registry")
			}
			assets, err := store.FindByTags(cmd.Context(), tags)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tSIZE\tTAGS")
			for _, as := range assets {
				d := as.Dimensions
				fmt.Fprintf(tw, "%s\t%s\t%.2fx%.2fx%.2f\t%s\n", as.Name, as.Kind, d.Width, d.Depth, d.Height, strings.Join(as.Tags, ","))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringSliceVarP(&tags, "tags", "t", nil, "required tags")

	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print one asset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeReg, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer closeReg()
			if store == nil {
				return fmt.Errorf("registry disabled by --no-registry")
			}
			as, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), as)
		},
	}

	rm := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove an asset record (its files are left in place)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeReg, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer closeReg()
			if store == nil {
				return fmt.Errorf("registry disabled by --no-registry")
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.style.done(cmd.OutOrStdout(), "deleted "+args[0])
			return nil
		},
	}

	reg.AddCommand(list, get, rm)
	return reg
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run IN [OUT]",
		Short: "Execute a JSON command file and write the JSON result",
		Long:  "run reads one command object from IN (- for stdin) and writes the result\nobject to OUT, or stdout when OUT is omitted. A failed command still writes\nits error result and exits non-zero.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			c, err := protocol.Decode(in)
			if err != nil {
				return err
			}
			res, execErr := a.execute(cmd, c)
			if res.Status == "" {
				return execErr
			}

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				f, err := os.Create(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := printJSON(out, res); err != nil {
				return err
			}
			return execErr
		},
	}
}
