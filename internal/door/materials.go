package door

// Material is the shading description of a door leaf material.
type Material struct {
	Color     [3]float64 `json:"color"`
	Roughness float64    `json:"roughness"`
	Metallic  float64    `json:"metallic"`
	Alpha     float64    `json:"alpha,omitempty"`
	IOR       float64    `json:"ior,omitempty"`
}

// Materials holds the shading of every leaf material Build accepts.
var Materials = map[string]Material{
	"wood":      {Color: [3]float64{0.4, 0.25, 0.15}, Roughness: 0.7},
	"glass":     {Color: [3]float64{0.9, 0.9, 0.9}, Alpha: 0.1, IOR: 1.45},
	"metal":     {Color: [3]float64{0.5, 0.5, 0.5}, Roughness: 0.3, Metallic: 1},
	"composite": {Color: [3]float64{0.6, 0.6, 0.6}, Roughness: 0.5, Metallic: 0.2},
}

// ValidMaterials lists the leaf materials in their documented order.
var ValidMaterials = []string{"wood", "glass", "metal", "composite"}

// ValidSwings lists the swing tags in their documented order.
var ValidSwings = []string{"inward_left", "inward_right", "outward_left", "outward_right", "sliding"}
