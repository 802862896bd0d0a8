package geometry

// BuildSlabs returns a floor plate at the base of every story plus a ceiling plate
// on top of the last one. The roof sits on the ceiling plate's upper face.
func BuildSlabs(footprint Rect, floors int, storyHeight, thickness float64) []Slab {
	if floors <= 0 {
		return nil
	}
	slabs := make([]Slab, 0, floors+1)
	for i := 0; i <= floors; i++ {
		slabs = append(slabs, Slab{Rect: footprint, Z: float64(i) * storyHeight, Thickness: thickness})
	}
	return slabs
}

// RoofBase is the elevation a roof over floors stories starts at.
func RoofBase(floors int, storyHeight, thickness float64) float64 {
	return float64(floors)*storyHeight + thickness
}
