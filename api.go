package foreman

import "github.com/TheBitDrifter/mask"

// Storage is the archetype facade the world drives. It physically groups
// entities by component signature; lifecycle flagging and pooling stay with
// the world, except that Load retains restored components from their schema
// pools and sets their snapshotted state.
type Storage interface {
	Create(entity EntityID, components ...*Component) error
	Insert(entity EntityID, components ...*Component) error
	AttachComponents(entity EntityID, components ...*Component) error

	Contains(entity EntityID) bool
	FindComponent(entity EntityID, schema *Schema) *Component
	FindComponentByTypeID(entity EntityID, id TypeID) *Component
	HasComponentOfSchema(entity EntityID, schema *Schema) bool
	EntityComponents(entity EntityID) []*Component
	Entities() []EntityID
	Count() int

	RemoveByTypeIDs(entity EntityID, ids ...TypeID) []*Component
	DetachBySchemaID(entity EntityID, ids ...TypeID) []*Component
	ClearComponents(entity EntityID) []*Component
	Destroy(entity EntityID) []*Component

	ClearMutations()
	Snapshot() *StorageSnapshot
	Load(snap *StorageSnapshot) error
	Reset()
}

// Topic is an event queue owned by the world: events accumulate during a
// step and are delivered when the registry flushes topics at the next step
// boundary.
type Topic interface {
	Flush()
	Clear()
}

// Archetype is the set of entities sharing one component signature.
type Archetype interface {
	ID() uint32
	Mask() mask.Mask
	Len() int
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(archetype Archetype, storage Storage) bool
}

type iCursor interface {
	Next() bool
	EntityID() EntityID
}

// Warning: internal dependencies abound!
type Cursor struct {
	// The query to filter entities
	query QueryNode

	// The storage to iterate over
	storage Storage

	// Current iteration state
	currentArchetype *archetype
	storageIndex     int
	entityIndex      int
	remaining        int

	// Initialization state
	initialized       bool
	matchedArchetypes []*archetype
}
