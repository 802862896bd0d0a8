package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Ko-stant/building-engine/internal/building"
	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/registry"
	"github.com/Ko-stant/building-engine/internal/telemetry"
)

type app struct {
	configPath string
	verbose    bool
	noRegistry bool

	settings config.Settings
	logger   *slog.Logger
	style    styles
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "buildgen",
		Short:         "Procedural building geometry generator",
		Long:          "buildgen lays out floor plans, carves door openings, stacks floors, caps them\nwith a roof and writes the mesh, plan and export manifest to disk.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				s.LogLevel = "debug"
			}
			a.settings = s
			a.logger = s.Logger(cmd.ErrOrStderr())
			a.style = newStyles(cmd.OutOrStdout())
			a.shutdown, err = telemetry.Init(cmd.Context(), telemetry.DefaultConfig("buildgen", config.Version))
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(context.Background())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "settings YAML file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.noRegistry, "no-registry", false, "do not record created assets")

	root.AddCommand(
		a.generateCmd(),
		a.createCmd(),
		a.roofCmd(),
		a.placeCmd(),
		a.registryCmd(),
		a.runCmd(),
		a.configCmd(),
		versionCmd(),
	)
	return root
}

// openRegistry opens the persistent registry unless --no-registry was given, in
// which case it returns nil and a no-op close.
func (a *app) openRegistry() (*registry.Store, func(), error) {
	if a.noRegistry {
		return nil, func() {}, nil
	}
	reg, err := registry.Open(registry.Config{Path: a.settings.RegistryDir, Logger: a.logger})
	if err != nil {
		return nil, nil, err
	}
	return reg, func() {
		if err := reg.Close(); err != nil {
			a.logger.Warn("close registry", "error", err)
		}
	}, nil
}

// execute runs one protocol command against the registry and returns its result.
// A failed command is also returned as an error so the process exits non-zero.
func (a *app) execute(cmd *cobra.Command, c protocol.Command) (protocol.Result, error) {
	reg, closeReg, err := a.openRegistry()
	if err != nil {
		return protocol.Result{}, err
	}
	defer closeReg()

	exec := building.NewExecutor(a.settings, reg, a.logger)
	exec.Progress = func(p protocol.Progress) {
		a.logger.Debug("progress", "building", p.Building, "stage", p.Stage, "done", p.Done, "total", p.Total)
	}
	if c.ID == "" {
		c.ID = protocol.NewRequestID()
	}
	res := exec.Execute(cmd.Context(), c)
	if !res.OK() {
		return res, fmt.Errorf("%s: %s", c.Command, res.Message)
	}
	return res, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the buildgen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "buildgen", config.Version)
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.settings.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
