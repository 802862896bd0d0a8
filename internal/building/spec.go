// Package building runs the whole generation pipeline for one building: floor
// layout, corridor openings, wall carving, slabs, roof and mesh emission. It also
// writes the export files and executes protocol commands.
package building

import (
	"errors"
	"fmt"

	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/roof"
)

var ErrInvalidSpec = errors.New("invalid building spec")

// Spec describes the building to generate. When Plan is set its rooms replace the
// generated corridor layout and Width/Depth come from its footprint.
type Spec struct {
	Name      string                   `json:"name" validate:"filename"`
	Width     float64                  `json:"width" validate:"gte=0"`
	Depth     float64                  `json:"depth" validate:"gte=0"`
	Floors    int                      `json:"floors" validate:"gte=1,lte=200"`
	Seed      int64                    `json:"seed"`
	Roof      roof.Type                `json:"roof"`
	RoofPitch float64                  `json:"roof_pitch,omitempty" validate:"gte=0,lt=90"`
	OutputDir string                   `json:"output_dir,omitempty"`
	Plan      *geometry.PlanDefinition `json:"plan,omitempty"`
}

// DefaultSpec is a one-story 20 x 16 m flat-roofed building.
func DefaultSpec() Spec {
	return Spec{
		Name:      "building",
		Width:     20,
		Depth:     16,
		Floors:    1,
		Roof:      roof.Flat,
		OutputDir: "./output",
	}
}

var validate = protocol.NewValidator()

// Footprint is the ground rectangle the building stands on.
func (s Spec) Footprint() geometry.Rect {
	if s.Plan != nil {
		return s.Plan.Footprint
	}
	return geometry.Rect{MaxX: s.Width, MaxY: s.Depth}
}

func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if s.Plan != nil {
		if err := s.Plan.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
		}
	}
	if fp := s.Footprint(); fp.Width() <= 0 || fp.Depth() <= 0 {
		return fmt.Errorf("%w: empty footprint %gx%g", ErrInvalidSpec, fp.Width(), fp.Depth())
	}
	return nil
}
