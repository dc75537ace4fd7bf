package foreman

import "github.com/TheBitDrifter/mask"

type archetypeID uint32

// archetype groups the entities sharing one component signature. Membership
// uses swap-removal, so iteration order within an archetype is not stable
// across removals.
type archetype struct {
	id        archetypeID
	signature mask.Mask
	entities  []EntityID
	index     map[EntityID]int
}

func newArchetype(id archetypeID, signature mask.Mask) *archetype {
	return &archetype{
		id:        id,
		signature: signature,
		index:     make(map[EntityID]int),
	}
}

func (a *archetype) ID() uint32 {
	return uint32(a.id)
}

func (a *archetype) Mask() mask.Mask {
	return a.signature
}

func (a *archetype) Len() int {
	return len(a.entities)
}

func (a *archetype) add(e EntityID) {
	if _, present := a.index[e]; present {
		return
	}
	a.index[e] = len(a.entities)
	a.entities = append(a.entities, e)
}

func (a *archetype) remove(e EntityID) {
	i, present := a.index[e]
	if !present {
		return
	}
	last := len(a.entities) - 1
	moved := a.entities[last]
	a.entities[i] = moved
	a.index[moved] = i
	a.entities = a.entities[:last]
	delete(a.index, e)
}

// maskFor builds the signature covering the given type ids.
func maskFor(ids []TypeID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}
