package geometry

// Slot is a named attachment point on an asset where a compatible sub-asset can be
// placed later. Occupied is the only field changed after the asset is built.
type Slot struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	GridPos  GridPos    `json:"grid_pos"`
	Position [3]float64 `json:"pos_meters"`
	Size     [2]float64 `json:"size_meters"`
	Required bool       `json:"required"`
	Occupied bool       `json:"occupied"`
}

// FindSlot returns the index of the slot with id, or -1.
func FindSlot(slots []Slot, id string) int {
	for i, s := range slots {
		if s.ID == id {
			return i
		}
	}
	return -1
}
