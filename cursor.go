package foreman

import "iter"

var _ iCursor = &Cursor{}

func newCursor(query QueryNode, storage Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: storage,
	}
}

func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.storageIndex < len(c.matchedArchetypes) {
		c.currentArchetype = c.matchedArchetypes[c.storageIndex]
		c.remaining = c.currentArchetype.Len()

		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.storageIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

// EntityID returns the entity at the cursor position.
func (c *Cursor) EntityID() EntityID {
	return c.currentArchetype.entities[c.entityIndex-1]
}

// Component retrieves the schema's component for the entity at the cursor
// position, or nil when the archetype does not carry it.
func (c *Cursor) Component(schema *Schema) *Component {
	return c.storage.FindComponent(c.EntityID(), schema)
}

// Entities iterates every matching entity without cursor bookkeeping.
func (c *Cursor) Entities() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		c.initialize()

		for c.storageIndex < len(c.matchedArchetypes) {
			c.currentArchetype = c.matchedArchetypes[c.storageIndex]
			c.remaining = c.currentArchetype.Len()

			for c.entityIndex < c.remaining {
				if !yield(c.currentArchetype.entities[c.entityIndex]) {
					c.Reset()
					return
				}
				c.entityIndex++
			}
			c.entityIndex = 0
			c.storageIndex++
		}
		c.Reset()
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matchedArchetypes = make([]*archetype, 0)

	// Find all matching archetypes
	for _, arch := range c.storage.(*storage).archetypes.asSlice {
		if c.query.Evaluate(arch, c.storage) {
			c.matchedArchetypes = append(c.matchedArchetypes, arch)
		}
	}
	if len(c.matchedArchetypes) > 0 {
		c.storageIndex = 0
		c.currentArchetype = c.matchedArchetypes[0]
		c.remaining = c.currentArchetype.Len()
	}
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matchedArchetypes = nil
	c.initialized = false
}

func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.initialize()
	}
	total := 0
	for _, arch := range c.matchedArchetypes {
		total += arch.Len()
	}
	return total
}
