package foreman

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
)

var _ Storage = &storage{}

// entityRecord holds an entity's live components. Attach order is preserved
// so component iteration and snapshots are deterministic.
type entityRecord struct {
	components map[TypeID]*Component
	order      []TypeID
	arch       archetypeID
	live       bool
}

type storage struct {
	registry   *Registry
	entities   []entityRecord
	archetypes *archetypes
	count      int
}

type archetypes struct {
	nextID           archetypeID
	asSlice          []*archetype
	idsGroupedByMask map[mask.Mask]archetypeID
}

func newStorage(registry *Registry) *storage {
	return &storage{
		registry: registry,
		archetypes: &archetypes{
			nextID:           1,
			idsGroupedByMask: make(map[mask.Mask]archetypeID),
		},
	}
}

// Create inserts components under an entity that must not yet exist.
func (sto *storage) Create(e EntityID, components ...*Component) error {
	if sto.Contains(e) {
		return fmt.Errorf("failed to create entity %d: already exists", e)
	}
	return sto.Insert(e, components...)
}

// Insert adds components under an entity, creating it on first insertion.
// A component whose type id is already present on the entity is skipped.
func (sto *storage) Insert(e EntityID, components ...*Component) error {
	if e < 0 {
		return EntityNotFoundError{Entity: e}
	}
	sto.grow(e)
	rec := &sto.entities[e]
	if !rec.live {
		rec.live = true
		rec.components = make(map[TypeID]*Component)
		sto.count++
	}
	for _, c := range components {
		if c == nil {
			continue
		}
		if _, present := rec.components[c.typeID]; present {
			continue
		}
		rec.components[c.typeID] = c
		rec.order = append(rec.order, c.typeID)
	}
	sto.regroup(e, rec)
	return nil
}

// AttachComponents is the contract alias for Insert.
func (sto *storage) AttachComponents(e EntityID, components ...*Component) error {
	return sto.Insert(e, components...)
}

func (sto *storage) Contains(e EntityID) bool {
	return e >= 0 && int(e) < len(sto.entities) && sto.entities[e].live
}

func (sto *storage) FindComponent(e EntityID, schema *Schema) *Component {
	if schema == nil {
		return nil
	}
	return sto.FindComponentByTypeID(e, schema.typeID)
}

func (sto *storage) FindComponentByTypeID(e EntityID, id TypeID) *Component {
	if !sto.Contains(e) {
		return nil
	}
	return sto.entities[e].components[id]
}

func (sto *storage) HasComponentOfSchema(e EntityID, schema *Schema) bool {
	return sto.FindComponent(e, schema) != nil
}

func (sto *storage) EntityComponents(e EntityID) []*Component {
	if !sto.Contains(e) {
		return nil
	}
	rec := &sto.entities[e]
	out := make([]*Component, 0, len(rec.order))
	for _, id := range rec.order {
		out = append(out, rec.components[id])
	}
	return out
}

func (sto *storage) Entities() []EntityID {
	out := make([]EntityID, 0, sto.count)
	for i := range sto.entities {
		if sto.entities[i].live {
			out = append(out, EntityID(i))
		}
	}
	return out
}

func (sto *storage) Count() int { return sto.count }

// RemoveByTypeIDs physically removes the named components and returns them.
// Type ids not present on the entity are skipped.
func (sto *storage) RemoveByTypeIDs(e EntityID, ids ...TypeID) []*Component {
	if !sto.Contains(e) {
		return nil
	}
	rec := &sto.entities[e]
	var removed []*Component
	for _, id := range ids {
		c, present := rec.components[id]
		if !present {
			continue
		}
		removed = append(removed, c)
		delete(rec.components, id)
		for i, oid := range rec.order {
			if oid == id {
				rec.order = append(rec.order[:i], rec.order[i+1:]...)
				break
			}
		}
	}
	if len(removed) > 0 {
		sto.regroup(e, rec)
	}
	return removed
}

// DetachBySchemaID is the contract alias for RemoveByTypeIDs.
func (sto *storage) DetachBySchemaID(e EntityID, ids ...TypeID) []*Component {
	return sto.RemoveByTypeIDs(e, ids...)
}

// ClearComponents removes every component but keeps the entity in storage.
func (sto *storage) ClearComponents(e EntityID) []*Component {
	if !sto.Contains(e) {
		return nil
	}
	rec := &sto.entities[e]
	removed := sto.EntityComponents(e)
	rec.components = make(map[TypeID]*Component)
	rec.order = rec.order[:0]
	sto.regroup(e, rec)
	return removed
}

// Destroy removes the entity and returns its components.
func (sto *storage) Destroy(e EntityID) []*Component {
	if !sto.Contains(e) {
		return nil
	}
	rec := &sto.entities[e]
	removed := sto.EntityComponents(e)
	if rec.arch != 0 {
		sto.archetypes.asSlice[rec.arch-1].remove(e)
	}
	sto.entities[e] = entityRecord{}
	sto.count--
	return removed
}

// ClearMutations drops the change record of every live component.
func (sto *storage) ClearMutations() {
	for i := range sto.entities {
		rec := &sto.entities[i]
		if !rec.live {
			continue
		}
		for _, c := range rec.components {
			c.ClearChanges()
		}
	}
}

func (sto *storage) Reset() {
	sto.entities = nil
	sto.count = 0
	sto.archetypes = &archetypes{
		nextID:           1,
		idsGroupedByMask: make(map[mask.Mask]archetypeID),
	}
}

func (sto *storage) grow(e EntityID) {
	needed := int(e) + 1
	if needed <= len(sto.entities) {
		return
	}
	if cap(sto.entities) < needed {
		// Grow by doubling or reaching the id, whichever is larger
		newCap := max(needed, 2*cap(sto.entities))
		grown := make([]entityRecord, len(sto.entities), newCap)
		copy(grown, sto.entities)
		sto.entities = grown
	}
	sto.entities = sto.entities[:needed]
}

// regroup moves the entity to the archetype matching its current signature.
func (sto *storage) regroup(e EntityID, rec *entityRecord) {
	signature := maskFor(rec.order)
	id, found := sto.archetypes.idsGroupedByMask[signature]
	if !found {
		created := newArchetype(sto.archetypes.nextID, signature)
		sto.archetypes.asSlice = append(sto.archetypes.asSlice, created)
		sto.archetypes.idsGroupedByMask[signature] = sto.archetypes.nextID
		id = sto.archetypes.nextID
		sto.archetypes.nextID++
	}
	if rec.arch == id {
		return
	}
	if rec.arch != 0 {
		sto.archetypes.asSlice[rec.arch-1].remove(e)
	}
	sto.archetypes.asSlice[id-1].add(e)
	rec.arch = id
}

// StorageSnapshot is an opaque deep copy of storage contents. It round-trips
// only through the storage family that produced it.
type StorageSnapshot struct {
	entities []entitySnapshot
}

type entitySnapshot struct {
	entity EntityID
	comps  []componentSnapshot
}

type componentSnapshot struct {
	typeID TypeID
	state  ComponentState
	fields *Record
}

func (sto *storage) Snapshot() *StorageSnapshot {
	snap := &StorageSnapshot{}
	for i := range sto.entities {
		rec := &sto.entities[i]
		if !rec.live {
			continue
		}
		es := entitySnapshot{entity: EntityID(i)}
		for _, id := range rec.order {
			c := rec.components[id]
			es.comps = append(es.comps, componentSnapshot{
				typeID: c.typeID,
				state:  c.state,
				fields: cloneValue(c.fields).(*Record),
			})
		}
		snap.entities = append(snap.entities, es)
	}
	return snap
}

// Load resets storage and rebuilds it from a snapshot, retaining components
// from their schema pools.
func (sto *storage) Load(snap *StorageSnapshot) error {
	sto.Reset()
	if snap == nil {
		return nil
	}
	for _, es := range snap.entities {
		comps := make([]*Component, 0, len(es.comps))
		for _, cs := range es.comps {
			schema := sto.registry.SchemaByTypeID(cs.typeID)
			if schema == nil {
				return SchemaNotFoundError{TypeID: cs.typeID}
			}
			c := schema.pool.Retain()
			c.fields = cloneValue(cs.fields).(*Record)
			c.observed = nil
			c.state = cs.state
			comps = append(comps, c)
		}
		if err := sto.Insert(es.entity, comps...); err != nil {
			return fmt.Errorf("failed to load snapshot entity %d: %w", es.entity, err)
		}
	}
	return nil
}
