// Package config holds the named constants consumed by the geometry core and the
// settings of the surrounding tools (registry location, log level).
//
// Settings are plain values: callers load them once (Default, Load) and pass them
// down. The server swaps them atomically when the file changes (see Watch).
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Ko-stant/building-engine/internal/seed"
)

// ErrInvalid is returned when loaded settings fail validation.
var ErrInvalid = errors.New("invalid settings")

// DoorStandard is the standard width/height pair of a door style, in meters.
type DoorStandard struct {
	Width  float64 `yaml:"w" json:"w" validate:"gt=0"`
	Height float64 `yaml:"h" json:"h" validate:"gt=0"`
}

// Settings is the configuration source of the engine.
type Settings struct {
	// Architectural constants.
	GridUnit      float64 `yaml:"grid_unit" json:"grid_unit" validate:"gt=0"`
	StoryHeight   float64 `yaml:"story_height" json:"story_height" validate:"gt=0"`
	WallThickness float64 `yaml:"wall_thickness" json:"wall_thickness" validate:"gt=0"`
	SlabThickness float64 `yaml:"slab_thickness" json:"slab_thickness" validate:"gt=0"`
	CorridorWidth float64 `yaml:"corridor_width" json:"corridor_width" validate:"gt=0"`
	MinRoomWidth  float64 `yaml:"min_room_width" json:"min_room_width" validate:"gt=0"`
	RoofHeight    float64 `yaml:"roof_height" json:"roof_height" validate:"gt=0"`
	RoofPitch     float64 `yaml:"roof_pitch" json:"roof_pitch" validate:"gt=0,lt=90"`

	// Openings.
	DoorWidth        float64                 `yaml:"door_width" json:"door_width" validate:"gt=0"`
	DoorHeight       float64                 `yaml:"door_height" json:"door_height" validate:"gt=0"`
	DoorStandards    map[string]DoorStandard `yaml:"door_standards" json:"door_standards" validate:"required,min=1,dive"`
	WindowSillHeight float64                 `yaml:"window_sill_height" json:"window_sill_height" validate:"gte=0"`
	WindowWidth      float64                 `yaml:"window_width" json:"window_width" validate:"gt=0"`
	WindowHeight     float64                 `yaml:"window_height" json:"window_height" validate:"gt=0"`

	// Math and tolerances.
	GoldenVariation float64 `yaml:"golden_variation" json:"golden_variation" validate:"gte=0,lt=1"`
	Epsilon         float64 `yaml:"epsilon" json:"epsilon" validate:"gt=0"`
	MergeDistance   float64 `yaml:"merge_distance" json:"merge_distance" validate:"gt=0"`
	ExportPrecision int     `yaml:"export_precision" json:"export_precision" validate:"gte=0,lte=10"`

	// Tooling.
	LogLevel    string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	RegistryDir string `yaml:"registry_dir" json:"registry_dir"`
	LibraryDir  string `yaml:"library_dir" json:"library_dir"`
	// ExportDir is where the server writes generated buildings, one directory per name.
	ExportDir   string `yaml:"export_dir" json:"export_dir"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the stock settings.
func Default() Settings {
	return Settings{
		GridUnit:      0.25,
		StoryHeight:   3.0,
		WallThickness: 0.2,
		SlabThickness: 0.2,
		CorridorWidth: 2.0,
		MinRoomWidth:  3.0,
		RoofHeight:    2.5,
		RoofPitch:     35.0,

		DoorWidth:  1.0,
		DoorHeight: 2.1,
		DoorStandards: map[string]DoorStandard{
			"single": {Width: 0.9, Height: 2.1},
			"double": {Width: 1.6, Height: 2.1},
			"garage": {Width: 2.5, Height: 2.25},
		},
		WindowSillHeight: 1.2,
		WindowWidth:      1.0,
		WindowHeight:     1.2,

		GoldenVariation: 0.04,
		Epsilon:         1e-4,
		MergeDistance:   0.0005,
		ExportPrecision: 4,

		LogLevel:    "info",
		RegistryDir: "_registry",
		LibraryDir:  "_library",
		ExportDir:   "output",
	}
}

// Load reads a YAML settings file over the defaults, applies BUILDGEN_* environment
// overrides and validates the result. An empty path yields the defaults plus env.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	s.applyEnv(os.Getenv)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field against its constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// DoorStyles returns the registered door styles in sorted order.
func (s Settings) DoorStyles() []string {
	styles := make([]string, 0, len(s.DoorStandards))
	for k := range s.DoorStandards {
		styles = append(styles, k)
	}
	sort.Strings(styles)
	return styles
}

// GoldenSplit splits length with the configured grid unit and variation.
func (s Settings) GoldenSplit(length float64, rng *seed.Stream) float64 {
	return seed.GoldenSplit(length, rng, s.GridUnit, s.GoldenVariation)
}

// Marshal renders the settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Settings) applyEnv(getenv func(string) string) {
	if v := getenv("BUILDGEN_LOG_LEVEL"); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := getenv("BUILDGEN_REGISTRY_DIR"); v != "" {
		s.RegistryDir = v
	}
	if v := getenv("BUILDGEN_LIBRARY_DIR"); v != "" {
		s.LibraryDir = v
	}
	if v := getenv("BUILDGEN_EXPORT_DIR"); v != "" {
		s.ExportDir = v
	}
}
