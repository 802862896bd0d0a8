package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotOccupied = errors.New("slot already occupied")
)

// Placement records an asset seated on a parent's slot.
type Placement struct {
	Parent string `json:"parent"`
	Slot   string `json:"slot"`
	Asset  string `json:"asset"`
}

// Placer seats registered assets on the slots of other registered assets.
type Placer struct {
	Store *Store
}

// PlaceOnSlot finds the first asset (in name order) carrying tags and marks slotID
// on parent as occupied. The lookup and the update run in one transaction. The
// parent's Slots are updated, and so is the slot list inside its Data document
// when it has one.
func (p Placer) PlaceOnSlot(ctx context.Context, parent, slotID string, tags []string) (Placement, error) {
	if err := ctx.Err(); err != nil {
		return Placement{}, err
	}
	var placed Placement
	err := p.Store.update(ctx, func(txn *badger.Txn) error {
		found, err := findByTags(ctx, txn, tags, 1)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("%w for tags %v", ErrNotFound, tags)
		}

		a, err := getAsset(txn, parent)
		if err != nil {
			return err
		}
		i := geometry.FindSlot(a.Slots, slotID)
		if i < 0 {
			return fmt.Errorf("%w: %s on %s", ErrSlotNotFound, slotID, parent)
		}
		if a.Slots[i].Occupied {
			return fmt.Errorf("%w: %s on %s", ErrSlotOccupied, slotID, parent)
		}
		a.Slots[i].Occupied = true
		if a.Data, err = markOccupied(a.Data, slotID); err != nil {
			return fmt.Errorf("update %s data: %w", parent, err)
		}
		a.UpdatedAt = p.Store.now().UTC()
		placed = Placement{Parent: parent, Slot: slotID, Asset: found[0].Name}
		return setAsset(txn, a)
	})
	if err != nil {
		return Placement{}, err
	}
	return placed, nil
}

// markOccupied sets "occupied" on the entry of data's "slots" array whose id is
// slotID. Documents without a slots array come back unchanged.
func markOccupied(data json.RawMessage, slotID string) (json.RawMessage, error) {
	if len(data) == 0 {
		return data, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc["slots"]
	if !ok {
		return data, nil
	}
	var slots []map[string]any
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, err
	}
	for _, s := range slots {
		if s["id"] == slotID {
			s["occupied"] = true
		}
	}
	patched, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	doc["slots"] = patched
	return json.Marshal(doc)
}
