package foreman

// EntityID is a dense non-negative entity identifier. Ids are allocated from
// an incrementing counter and are not reused unless World.Reset or
// World.Restore rewinds that counter.
type EntityID int

// TypeID is the dense integer identity of a component schema.
type TypeID int

// ComponentState is the lifecycle state of a component instance.
type ComponentState uint8

const (
	// StateAttaching marks a component whose attachment is pending or was
	// applied this step. Systems see it on the first visible step, except
	// for components enqueued before the world's first step: that step's
	// extra drain promotes them to Attached before systems run.
	StateAttaching ComponentState = iota
	// StateAttached marks a settled component.
	StateAttached
	// StateDetaching marks a component whose removal is pending. Queries
	// during the same step still see it present.
	StateDetaching
	// StateDetached marks a component removed by op application. It stays in
	// storage only for the remainder of that step's op-application phase.
	StateDetached
)

func (s ComponentState) String() string {
	switch s {
	case StateAttaching:
		return "attaching"
	case StateAttached:
		return "attached"
	case StateDetaching:
		return "detaching"
	case StateDetached:
		return "detached"
	}
	return "unknown"
}

// Component is a pooled, schema-shaped value attached to an entity. The type
// id is fixed at pool construction; the lifecycle state is driven by the
// world.
type Component struct {
	typeID   TypeID
	state    ComponentState
	fields   *Record
	observed *ObservedRecord
}

func (c *Component) TypeID() TypeID        { return c.typeID }
func (c *Component) State() ComponentState { return c.state }

// Fields exposes the component's value tree for direct, untracked access.
// Mutations that must be visible to change consumers go through Observed.
func (c *Component) Fields() *Record { return c.fields }

// Observed returns the memoized observed view over the component.
func (c *Component) Observed() *ObservedRecord {
	if c.observed == nil {
		c.observed = newObservedRecord(c.fields)
	}
	return c.observed
}

// Changed reports whether the component's change record is non-empty.
func (c *Component) Changed() bool {
	return c.observed != nil && !c.observed.Changes().Empty()
}

// ClearChanges drops the component's accumulated change record.
func (c *Component) ClearChanges() {
	if c.observed != nil {
		c.observed.Changes().Clear()
	}
}
