package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	CmdCreateWall       = "create_wall"
	CmdCreateDoor       = "create_door"
	CmdGenerateBuilding = "generate_building"
	CmdBuildRoof        = "build_roof"
	CmdPlaceAsset       = "place_asset"
)

// Commands lists every command an executor accepts.
var Commands = []string{CmdCreateWall, CmdCreateDoor, CmdGenerateBuilding, CmdBuildRoof, CmdPlaceAsset}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var ErrMalformed = errors.New("malformed command")

type Command struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command" validate:"required,oneof=create_wall create_door generate_building build_roof place_asset"`
	Seed    int64           `json:"seed"`
	Asset   json.RawMessage `json:"asset,omitempty"`
	Spec    json.RawMessage `json:"spec,omitempty"`
}

type Result struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height,omitempty"`
	Depth  float64 `json:"depth,omitempty"`
}

type WallAsset struct {
	Name       string     `json:"name" validate:"filename"`
	Dimensions Dimensions `json:"dimensions"`
	Tags       []string   `json:"tags,omitempty"`
}

type DoorAsset struct {
	Name     string     `json:"name" validate:"filename"`
	Style    string     `json:"style"`
	Material string     `json:"material"`
	Swing    string     `json:"swing"`
	Position [3]float64 `json:"position"`
}

type PlaceAsset struct {
	Parent string   `json:"parent" validate:"required"`
	Slot   string   `json:"slot" validate:"required"`
	Tags   []string `json:"tags" validate:"required,min=1"`
}

type RoofSpec struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Depth  float64 `json:"depth" validate:"gt=0"`
	Roof   string  `json:"roof"`
	Base   float64 `json:"base"`
	Height float64 `json:"height" validate:"gte=0"`
	Pitch  float64 `json:"pitch" validate:"gte=0,lt=90"`
}

var validate = NewValidator()

// SafeName reports whether name can be used as a file name stem: non-empty, no
// path separators and not a dot entry.
func SafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// NewValidator returns a validator that also knows the "filename" rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return SafeName(fl.Field().String())
	})
	return v
}

// NewRequestID returns a fresh id for correlating a command with its progress
// events and result.
func NewRequestID() string { return uuid.NewString() }

// Decode reads one command and checks its name. A command without an id gets one.
func Decode(r io.Reader) (Command, error) {
	var c Command
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c.ID == "" {
		c.ID = NewRequestID()
	}
	return c, nil
}

// DecodeAsset unmarshals the asset payload into v and validates it. A missing
// payload leaves v untouched.
func (c Command) DecodeAsset(v any) error {
	return decodePayload("asset", c.Asset, v)
}

// DecodeSpec is DecodeAsset for the spec payload.
func (c Command) DecodeSpec(v any) error {
	return decodePayload("spec", c.Spec, v)
}

func decodePayload(field string, raw json.RawMessage, v any) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
		}
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	return nil
}

func Success(id string, v any) Result {
	return Result{ID: id, Status: StatusSuccess, Result: v}
}

func Failure(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Message: err.Error()}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Status == StatusSuccess }
