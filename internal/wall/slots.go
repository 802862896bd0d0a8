package wall

import (
	"errors"
	"fmt"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

var (
	ErrUnknownSlotType = errors.New("unknown slot type")
	ErrInvalidSlot     = errors.New("invalid slot")
)

// SlotType describes what may be attached to a slot of that type.
type SlotType struct {
	Description string   `json:"description"`
	Accepts     []string `json:"accepts"`
}

// SlotTypes is the registry every generated slot is validated against.
var SlotTypes = map[string]SlotType{
	"window_opening": {Description: "rectangular window cutout in a wall", Accepts: []string{"arch_window"}},
	"door_opening":   {Description: "door frame seated in a wall opening", Accepts: []string{"arch_door"}},
	"door_hardware":  {Description: "handle or knob on a door leaf", Accepts: []string{"door_knob", "door_handle"}},
	"door_hinge":     {Description: "hinge between frame and leaf", Accepts: []string{"door_hinge"}},
}

// ValidateSlot checks the slot's type is registered and its fields are usable.
func ValidateSlot(s geometry.Slot) error {
	if _, ok := SlotTypes[s.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlotType, s.Type)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSlot)
	}
	if s.Size[0] <= 0 || s.Size[1] <= 0 {
		return fmt.Errorf("%w: %s has size %v", ErrInvalidSlot, s.ID, s.Size)
	}
	return nil
}
