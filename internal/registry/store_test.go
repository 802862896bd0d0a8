package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPut_AddThenUpdateKeepsIdentity(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	first, err := s.Put(ctx, Asset{Name: "wall_a", Kind: "wall", Tags: []string{"arch_wall"}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, clock, first.CreatedAt)

	clock = clock.Add(time.Hour)
	second, err := s.Put(ctx, Asset{Name: "wall_a", Kind: "wall", Tags: []string{"arch_wall", "tall"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, clock, second.UpdatedAt)

	got, err := s.Get(ctx, "wall_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"arch_wall", "tall"}, got.Tags)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPut_RequiresName(t *testing.T) {
	_, err := openTest(t).Put(context.Background(), Asset{})
	assert.Error(t, err)
}

func TestGetAndDelete_Missing(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.Get(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, "ghost"), ErrNotFound))

	_, err = s.Put(ctx, Asset{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "x"))
	_, err = s.Get(ctx, "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindByTags_SubsetInNameOrder(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, a := range []Asset{
		{Name: "door_c", Tags: []string{"arch_door", "mat_wood"}},
		{Name: "door_a", Tags: []string{"arch_door", "mat_glass"}},
		{Name: "door_b", Tags: []string{"arch_door", "mat_wood", "door_single"}},
		{Name: "wall_a", Tags: []string{"arch_wall"}},
	} {
		_, err := s.Put(ctx, a)
		require.NoError(t, err)
	}

	found, err := s.FindByTags(ctx, []string{"arch_door", "mat_wood"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "door_b", found[0].Name)
	assert.Equal(t, "door_c", found[1].Name)

	first, err := s.FindFirst(ctx, []string{"arch_door"})
	require.NoError(t, err)
	assert.Equal(t, "door_a", first.Name)

	_, err = s.FindFirst(ctx, []string{"arch_window"})
	assert.True(t, errors.Is(err, ErrNotFound))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.FindByTags(cancelled, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPut_Concurrent(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Put(ctx, Asset{Name: "shared", Tags: []string{"x"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	_, err = s.Put(context.Background(), Asset{Name: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(context.Background(), "kept")
	assert.NoError(t, err)

	_, err = Open(Config{})
	assert.Error(t, err)
}

func TestPlaceOnSlot(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.Put(ctx, Asset{Name: "front_door", Tags: []string{"arch_door"}, Slots: []geometry.Slot{
		{ID: "doorknob", Type: "door_hardware"},
		{ID: "hinge_top", Type: "door_hinge", Required: true},
	}})
	require.NoError(t, err)
	_, err = s.Put(ctx, Asset{Name: "brass_knob", Tags: []string{"door_knob", "brass"}})
	require.NoError(t, err)

	p := Placer{Store: s}
	got, err := p.PlaceOnSlot(ctx, "front_door", "doorknob", []string{"door_knob"})
	require.NoError(t, err)
	assert.Equal(t, Placement{Parent: "front_door", Slot: "doorknob", Asset: "brass_knob"}, got)

	door, err := s.Get(ctx, "front_door")
	require.NoError(t, err)
	assert.True(t, door.Slots[0].Occupied)
	assert.False(t, door.Slots[1].Occupied)

	_, err = p.PlaceOnSlot(ctx, "front_door", "doorknob", []string{"door_knob"})
	assert.True(t, errors.Is(err, ErrSlotOccupied))
	_, err = p.PlaceOnSlot(ctx, "front_door", "threshold", []string{"door_knob"})
	assert.True(t, errors.Is(err, ErrSlotNotFound))
	_, err = p.PlaceOnSlot(ctx, "front_door", "hinge_top", []string{"door_hinge"})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = p.PlaceOnSlot(ctx, "back_door", "doorknob", []string{"door_knob"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPut_ConcurrentSameNameKeepsOneIdentity(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	first, err := s.Put(ctx, Asset{Name: "hot"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Put(ctx, Asset{Name: "hot", Tags: []string{"x"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := s.Get(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, []string{"x"}, got.Tags)
}

func TestPlaceOnSlot_ConcurrentSlotsOnOneParent(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	slots := []geometry.Slot{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	_, err := s.Put(ctx, Asset{Name: "panel", Slots: slots})
	require.NoError(t, err)
	_, err = s.Put(ctx, Asset{Name: "bolt", Tags: []string{"bolt"}})
	require.NoError(t, err)

	p := Placer{Store: s}
	var wg sync.WaitGroup
	for _, sl := range slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.PlaceOnSlot(ctx, "panel", sl.ID, []string{"bolt"})
			assert.NoError(t, err, sl.ID)
		}()
	}
	wg.Wait()

	panel, err := s.Get(ctx, "panel")
	require.NoError(t, err)
	for _, sl := range panel.Slots {
		assert.True(t, sl.Occupied, sl.ID)
	}
}

func TestPlaceOnSlot_UpdatesStoredDocument(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	data := []byte(`{"name":"front","slots":[{"id":"doorknob","occupied":false},{"id":"hinge_top","occupied":false}]}`)
	_, err := s.Put(ctx, Asset{
		Name:  "front",
		Slots: []geometry.Slot{{ID: "doorknob"}, {ID: "hinge_top"}},
		Data:  data,
	})
	require.NoError(t, err)
	_, err = s.Put(ctx, Asset{Name: "knob", Tags: []string{"door_knob"}})
	require.NoError(t, err)

	_, err = Placer{Store: s}.PlaceOnSlot(ctx, "front", "doorknob", []string{"door_knob"})
	require.NoError(t, err)

	door, err := s.Get(ctx, "front")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"front","slots":[{"id":"doorknob","occupied":true},{"id":"hinge_top","occupied":false}]}`, string(door.Data))

	_, err = s.Put(ctx, Asset{Name: "plain", Slots: []geometry.Slot{{ID: "top"}}, Data: []byte(`{"kind":"crate"}`)})
	require.NoError(t, err)
	_, err = Placer{Store: s}.PlaceOnSlot(ctx, "plain", "top", []string{"door_knob"})
	require.NoError(t, err)
	plain, err := s.Get(ctx, "plain")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"crate"}`, string(plain.Data))
}
