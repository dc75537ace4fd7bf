package foreman

import "testing"

func TestStorageInsertAndFind(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	velocity := testSchema(t, registry, "velocity")
	sto := newStorage(registry)

	pos := position.New()
	vel := velocity.New()

	if err := sto.Create(1, pos, vel); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sto.Create(1, position.New()); err == nil {
		t.Error("creating an existing entity should fail")
	}

	if got := sto.FindComponent(1, position); got != pos {
		t.Errorf("FindComponent = %v, want the inserted instance", got)
	}
	if got := sto.FindComponentByTypeID(1, velocity.TypeID()); got != vel {
		t.Errorf("FindComponentByTypeID = %v, want the inserted instance", got)
	}
	if sto.FindComponent(2, position) != nil {
		t.Error("lookup on a missing entity should return nil")
	}
	if !sto.HasComponentOfSchema(1, position) {
		t.Error("HasComponentOfSchema should be true")
	}

	comps := sto.EntityComponents(1)
	if len(comps) != 2 || comps[0] != pos || comps[1] != vel {
		t.Errorf("EntityComponents = %v, want attach order [pos vel]", comps)
	}
}

func TestStorageDuplicateInsertSkipped(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	sto := newStorage(registry)

	first := position.New()
	second := position.New()
	sto.Insert(3, first)
	sto.Insert(3, second)

	if got := sto.FindComponent(3, position); got != first {
		t.Error("a second component of the same type should be skipped")
	}
	if len(sto.EntityComponents(3)) != 1 {
		t.Errorf("component count = %d, want 1", len(sto.EntityComponents(3)))
	}
}

func TestStorageRemoveAndDestroy(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	velocity := testSchema(t, registry, "velocity")
	sto := newStorage(registry)

	pos, vel := position.New(), velocity.New()
	sto.Insert(0, pos, vel)

	removed := sto.RemoveByTypeIDs(0, velocity.TypeID(), TypeID(99))
	if len(removed) != 1 || removed[0] != vel {
		t.Errorf("removed = %v, want [vel]; unknown ids skip", removed)
	}
	if sto.FindComponent(0, velocity) != nil {
		t.Error("removed component should be gone")
	}
	if sto.FindComponent(0, position) == nil {
		t.Error("remaining component should survive removal")
	}

	removed = sto.Destroy(0)
	if len(removed) != 1 || removed[0] != pos {
		t.Errorf("destroy removed = %v, want [pos]", removed)
	}
	if sto.Contains(0) {
		t.Error("destroyed entity should not be contained")
	}
	if sto.Count() != 0 {
		t.Errorf("count = %d, want 0", sto.Count())
	}
}

func TestStorageClearComponentsKeepsEntity(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	sto := newStorage(registry)

	sto.Insert(5, position.New())
	removed := sto.ClearComponents(5)

	if len(removed) != 1 {
		t.Errorf("removed = %v, want one component", removed)
	}
	if !sto.Contains(5) {
		t.Error("cleared entity should remain in storage")
	}
	if len(sto.EntityComponents(5)) != 0 {
		t.Error("cleared entity should have no components")
	}
}

func TestStorageArchetypeRegrouping(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	velocity := testSchema(t, registry, "velocity")
	sto := newStorage(registry)

	sto.Insert(0, position.New())
	sto.Insert(1, position.New(), velocity.New())
	sto.Insert(2, position.New())

	if len(sto.archetypes.asSlice) != 2 {
		t.Fatalf("archetypes = %d, want 2", len(sto.archetypes.asSlice))
	}

	// Moving entity 0 into the second signature must not create a third
	// archetype.
	sto.Insert(0, velocity.New())
	if len(sto.archetypes.asSlice) != 2 {
		t.Errorf("archetypes = %d, want 2 after regroup", len(sto.archetypes.asSlice))
	}

	both := sto.archetypes.asSlice[1]
	if both.Len() != 2 {
		t.Errorf("combined archetype len = %d, want 2", both.Len())
	}
	single := sto.archetypes.asSlice[0]
	if single.Len() != 1 {
		t.Errorf("single archetype len = %d, want 1", single.Len())
	}
}

func TestStorageClearMutations(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	sto := newStorage(registry)

	pos := position.New()
	sto.Insert(0, pos)
	pos.Observed().Set("x", 4)

	if !pos.Changed() {
		t.Fatal("component should be changed before the sweep")
	}
	sto.ClearMutations()
	if pos.Changed() {
		t.Error("ClearMutations should drop all change records")
	}
}

func TestStorageSnapshotLoad(t *testing.T) {
	registry := newRegistry()
	position := testSchema(t, registry, "position")
	sto := newStorage(registry)

	pos := position.New()
	pos.Fields().Set("x", 42)
	sto.Insert(7, pos)

	snap := sto.Snapshot()

	// Mutating live state after the snapshot must not affect it.
	pos.Fields().Set("x", -1)
	sto.Destroy(7)

	if err := sto.Load(snap); err != nil {
		t.Fatalf("load: %v", err)
	}
	restored := sto.FindComponent(7, position)
	if restored == nil {
		t.Fatal("restored entity should carry its component")
	}
	if restored == pos {
		t.Error("restored component should be a fresh pooled instance")
	}
	if restored.Fields().Get("x") != 42 {
		t.Errorf("restored x = %v, want 42", restored.Fields().Get("x"))
	}
}
