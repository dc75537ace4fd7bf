package foreman

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// World is the transactional coordinator: it owns entity identity, mediates
// structural changes through the deferred op queue, drives the system
// pipeline once per step, and flags component lifecycle transitions.
//
// A world is owned by one executor. All mutations happen within Step or
// explicit pre/post-step calls; nothing here is safe for concurrent use.
type World struct {
	registry *Registry
	storage  Storage
	logger   *zap.Logger

	queue  opQueue
	topics []Topic

	systems      []*System
	nextSystemID int
	latestSystem int

	counter        EntityID
	latestStep     int
	latestStepData any

	attaching       []*Component
	finalizeDetach  map[EntityID][]TypeID
	finalizeDestroy map[EntityID]struct{}
	pendingDestroy  map[EntityID]struct{}

	draining     bool
	bootstrapped bool
}

type WorldOption func(*World)

// WithRegistry overrides the default schema registry.
func WithRegistry(registry *Registry) WorldOption {
	return func(w *World) {
		if registry != nil {
			w.registry = registry
		}
	}
}

// WithLogger attaches a structured logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithConfig applies pool tuning from a loaded config.
func WithConfig(cfg *Config) WorldOption {
	return func(w *World) {
		if cfg == nil {
			return
		}
		if cfg.Pools.DefaultCapacity > 0 {
			w.registry.defaultPoolCapacity = cfg.Pools.DefaultCapacity
		}
		for name, capacity := range cfg.Pools.Schemas {
			if capacity > 0 {
				w.registry.poolOverrides[name] = capacity
			}
		}
		if cfg.Ops.PoolCapacity > 0 {
			w.registry.ops.capacity = cfg.Ops.PoolCapacity
		}
	}
}

func newWorld(opts ...WorldOption) *World {
	w := &World{
		registry:        newRegistry(),
		logger:          zap.NewNop(),
		latestSystem:    -1,
		finalizeDetach:  make(map[EntityID][]TypeID),
		finalizeDestroy: make(map[EntityID]struct{}),
		pendingDestroy:  make(map[EntityID]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.storage = newStorage(w.registry)
	return w
}

// Registry exposes the world's schema registry.
func (w *World) Registry() *Registry { return w.registry }

// Storage exposes the archetype facade.
func (w *World) Storage() Storage { return w.storage }

// LatestStep reports the number of completed steps.
func (w *World) LatestStep() int { return w.latestStep }

// LatestStepData returns the data passed to the most recent Step.
func (w *World) LatestStepData() any { return w.latestStepData }

// LatestSystem reports the id of the currently executing system, or -1.
func (w *World) LatestSystem() int { return w.latestSystem }

// Create allocates the next entity id. When components are given, an attach
// op is enqueued; the id may be referenced before the entity exists in
// storage.
func (w *World) Create(components ...*Component) EntityID {
	e := w.counter
	w.counter++
	if len(components) > 0 {
		w.Attach(e, components...)
	}
	return e
}

// Attach enqueues the components for insertion under the entity. Each is
// flagged Attaching immediately so out-of-band observation reflects the
// pending arrival.
func (w *World) Attach(e EntityID, components ...*Component) {
	if len(components) == 0 {
		return
	}
	for _, c := range components {
		if c != nil {
			c.state = StateAttaching
		}
	}
	op := w.registry.ops.retain()
	op.typ = opAttach
	op.entity = e
	op.comps = append(op.comps, components...)
	w.queue.enqueue(op)
}

// Detach enqueues removal of the resolved type ids. Items may be component
// instances, schemas, or raw type ids. Matching stored components are
// flagged Detaching immediately.
func (w *World) Detach(e EntityID, items ...any) {
	ids := resolveTypeIDs(items)
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if c := w.storage.FindComponentByTypeID(e, id); c != nil {
			c.state = StateDetaching
		}
	}
	op := w.registry.ops.retain()
	op.typ = opDetach
	op.entity = e
	op.typeIDs = append(op.typeIDs, ids...)
	w.queue.enqueue(op)
}

// Destroy enqueues removal of the entity and flags its components Detaching.
// Repeat calls within a step are ignored.
func (w *World) Destroy(e EntityID) {
	if _, pending := w.pendingDestroy[e]; pending {
		return
	}
	w.pendingDestroy[e] = struct{}{}
	for _, c := range w.storage.EntityComponents(e) {
		c.state = StateDetaching
	}
	op := w.registry.ops.retain()
	op.typ = opDestroy
	op.entity = e
	w.queue.enqueue(op)
}

// AttachImmediate bypasses the queue and inserts now. Must not be called
// while the op queue is draining unless the caller accepts reentrancy.
func (w *World) AttachImmediate(e EntityID, components ...*Component) error {
	if err := w.storage.Insert(e, components...); err != nil {
		return fmt.Errorf("failed to attach components: %w", err)
	}
	for _, c := range components {
		if c != nil {
			c.state = StateAttached
		}
	}
	return nil
}

// DetachImmediate bypasses the queue, removes now, and releases the removed
// components to their pools. Unlike the deferred path it is strict: a
// missing component is an error.
func (w *World) DetachImmediate(e EntityID, items ...any) error {
	ids := resolveTypeIDs(items)
	for _, id := range ids {
		if w.storage.FindComponentByTypeID(e, id) == nil {
			return ComponentNotFoundError{Entity: e, TypeID: id}
		}
	}
	removed := w.storage.RemoveByTypeIDs(e, ids...)
	w.releaseAll(removed)
	return nil
}

// DestroyImmediate bypasses the queue, removing the entity and releasing its
// components now. Destroying a missing entity is a no-op.
func (w *World) DestroyImmediate(e EntityID) {
	removed := w.storage.Destroy(e)
	w.releaseAll(removed)
	delete(w.pendingDestroy, e)
}

// ApplyOps injects an externally supplied op batch, e.g. from a replication
// client. Components named by detach and destroy ops are pre-flagged
// Detaching; the ops are copied into pooled operations and flow through the
// standard apply path. Must not be called while the queue is draining.
func (w *World) ApplyOps(ops ...Op) error {
	if w.draining {
		return InvalidStateError{Op: "ApplyOps", Reason: "op queue is draining"}
	}
	for _, in := range ops {
		switch in.typ {
		case opSpawn, opAttach:
			for _, c := range in.comps {
				if c != nil {
					c.state = StateAttaching
				}
			}
		case opDetach:
			for _, id := range in.typeIDs {
				if c := w.storage.FindComponentByTypeID(in.entity, id); c != nil {
					c.state = StateDetaching
				}
			}
		case opDestroy:
			for _, c := range w.storage.EntityComponents(in.entity) {
				c.state = StateDetaching
			}
		}
		op := w.registry.ops.retain()
		op.typ = in.typ
		op.entity = in.entity
		op.comps = append(op.comps, in.comps...)
		op.typeIDs = append(op.typeIDs, in.typeIDs...)
		w.queue.enqueue(op)
	}
	return nil
}

// PendingOps reports the number of queued operations.
func (w *World) PendingOps() int { return w.queue.len() }

// drainOps applies every queued op in enqueue order, then maintains:
// components applied on a previous drain are promoted to Attached, and
// components flagged Detached this drain are physically removed and released.
func (w *World) drainOps() {
	w.draining = true
	promote := w.attaching
	w.attaching = nil

	pending := w.queue.take()
	for _, op := range pending {
		w.applyDeferredOp(op)
		w.registry.ops.release(op)
	}
	w.maintain(promote)

	// A component attached and finalized within the same drain was already
	// released; keep only instances still awaiting promotion.
	live := w.attaching[:0]
	for _, c := range w.attaching {
		if c.state == StateAttaching {
			live = append(live, c)
		}
	}
	w.attaching = live
	w.draining = false

	if len(pending) > 0 {
		w.logger.Debug("applied deferred ops",
			zap.Int("count", len(pending)),
			zap.Int("step", w.latestStep),
		)
	}
}

func (w *World) applyDeferredOp(op *operation) {
	switch op.typ {
	case opSpawn, opAttach:
		if err := w.storage.Insert(op.entity, op.comps...); err != nil {
			w.logger.Warn("dropped deferred op",
				zap.String("op", op.typ.String()),
				zap.Int("entity", int(op.entity)),
				zap.Error(err),
			)
			return
		}
		for _, c := range op.comps {
			if c == nil {
				continue
			}
			c.state = StateAttaching
			w.attaching = append(w.attaching, c)
		}
	case opDetach:
		for _, id := range op.typeIDs {
			c := w.storage.FindComponentByTypeID(op.entity, id)
			if c == nil {
				continue
			}
			c.state = StateDetached
			w.finalizeDetach[op.entity] = append(w.finalizeDetach[op.entity], id)
		}
	case opDestroy:
		if !w.storage.Contains(op.entity) {
			return
		}
		for _, c := range w.storage.EntityComponents(op.entity) {
			c.state = StateDetached
		}
		w.finalizeDestroy[op.entity] = struct{}{}
	}
}

func (w *World) maintain(promote []*Component) {
	for _, c := range promote {
		if c.state == StateAttaching {
			c.state = StateAttached
		}
	}
	for e, ids := range w.finalizeDetach {
		w.releaseAll(w.storage.RemoveByTypeIDs(e, ids...))
	}
	clear(w.finalizeDetach)
	for e := range w.finalizeDestroy {
		w.releaseAll(w.storage.Destroy(e))
	}
	clear(w.finalizeDestroy)
	clear(w.pendingDestroy)
}

func (w *World) releaseAll(components []*Component) {
	for _, c := range components {
		if schema := w.registry.SchemaByTypeID(c.typeID); schema != nil {
			schema.pool.Release(c)
		}
	}
}

// AddTopic registers a topic. Topics flush in registration order before
// systems run each step.
func (w *World) AddTopic(t Topic) {
	if t != nil {
		w.topics = append(w.topics, t)
	}
}

// Step runs one iteration of the world loop: drain the op queue, flush
// topics, execute systems in registration order, advance bookkeeping. Ops
// enqueued by systems become visible to the next step. On the very first
// step the queue drains twice so pre-step structural requests settle before
// the first system runs.
func (w *World) Step(data any) {
	w.latestStepData = data
	if !w.bootstrapped {
		w.drainOps()
		w.bootstrapped = true
	}
	w.drainOps()

	for _, t := range w.topics {
		t.Flush()
	}

	systems := w.systems
	for _, s := range systems {
		w.latestSystem = s.id
		s.fn(w, data)
	}
	w.latestSystem = -1

	clear(w.pendingDestroy)
	w.latestStep++
}

// Get returns the entity's component for the schema, registering the schema
// if it is new to this world.
func (w *World) Get(e EntityID, schema *Schema) (*Component, error) {
	if !schema.registered {
		if err := w.registry.Register(schema); err != nil {
			return nil, err
		}
	}
	c := w.storage.FindComponent(e, schema)
	if c == nil {
		return nil, ComponentNotFoundError{Entity: e, TypeID: schema.typeID}
	}
	return c, nil
}

// TryGet returns the component or nil.
func (w *World) TryGet(e EntityID, schema *Schema) *Component {
	return w.storage.FindComponent(e, schema)
}

// Has reports component presence.
func (w *World) Has(e EntityID, schema *Schema) bool {
	return w.storage.HasComponentOfSchema(e, schema)
}

// Observed returns the memoized observed view for the component.
func (w *World) Observed(c *Component) *ObservedRecord {
	return c.Observed()
}

// IsComponentChanged reports whether the component's change record is
// non-empty.
func (w *World) IsComponentChanged(c *Component) bool {
	return c.Changed()
}

// ChangedComponents collects every live component with a non-empty change
// record, in entity then attach order.
func (w *World) ChangedComponents() []*Component {
	var out []*Component
	for _, e := range w.storage.Entities() {
		for _, c := range w.storage.EntityComponents(e) {
			if c.Changed() {
				out = append(out, c)
			}
		}
	}
	return out
}

// Patch applies a scalar write at a dotted path, walking observed views so
// the change is recorded. List indices are numeric path segments.
func (w *World) Patch(e EntityID, id TypeID, path string, value any) error {
	c := w.storage.FindComponentByTypeID(e, id)
	if c == nil {
		return ComponentNotFoundError{Entity: e, TypeID: id}
	}
	segments := strings.Split(path, ".")
	var view any = c.Observed()
	for i, seg := range segments {
		last := i == len(segments)-1
		switch v := view.(type) {
		case *ObservedRecord:
			if last {
				v.Set(seg, value)
				return nil
			}
			view = v.Get(seg)
		case *ObservedObject:
			if last {
				v.Set(seg, value)
				return nil
			}
			view = v.Get(seg)
		case *ObservedDict:
			if last {
				v.Set(seg, value)
				return nil
			}
			view = v.Get(seg)
		case *ObservedList:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return fmt.Errorf("failed to patch %q: segment %q is not an index", path, seg)
			}
			if last {
				v.Set(idx, value)
				return nil
			}
			view = v.Get(idx)
		default:
			return fmt.Errorf("failed to patch %q: segment %q resolves to a leaf", path, seg)
		}
	}
	return nil
}

// Query builds an empty query over this world's storage.
func (w *World) Query() Query { return newQuery() }

// NewCursor iterates entities matching the query node.
func (w *World) NewCursor(node QueryNode) *Cursor {
	return newCursor(node, w.storage)
}

// Snapshot combines the storage snapshot with world bookkeeping. The value
// is opaque and round-trips only with the registry that produced it.
type Snapshot struct {
	storage *StorageSnapshot
	counter EntityID
	step    int
}

func (w *World) GetSnapshot() *Snapshot {
	return &Snapshot{
		storage: w.storage.Snapshot(),
		counter: w.counter,
		step:    w.latestStep,
	}
}

// Restore rebuilds storage from a snapshot. Pending ops are not permitted.
func (w *World) Restore(snap *Snapshot) error {
	if w.draining {
		return InvalidStateError{Op: "Restore", Reason: "op queue is draining"}
	}
	if w.queue.len() > 0 {
		return InvalidStateError{Op: "Restore", Reason: "ops are pending"}
	}
	if snap == nil {
		return nil
	}
	for _, e := range w.storage.Entities() {
		w.releaseAll(w.storage.EntityComponents(e))
	}
	if err := w.storage.Load(snap.storage); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	w.counter = snap.counter
	w.latestStep = snap.step
	return nil
}

// Reset rewinds the world: deferred ops, systems, topics, and pending sets
// are cleared, live components return to their pools, storage resets, and
// the entity counter rewinds to zero. Fails during op application or while a
// system is executing.
func (w *World) Reset() error {
	if w.draining {
		return InvalidStateError{Op: "Reset", Reason: "op queue is draining"}
	}
	if w.latestSystem >= 0 {
		return InvalidStateError{Op: "Reset", Reason: "a system is executing"}
	}
	for _, op := range w.queue.take() {
		w.registry.ops.release(op)
	}
	w.systems = nil
	w.topics = nil
	w.attaching = nil
	clear(w.pendingDestroy)
	clear(w.finalizeDetach)
	clear(w.finalizeDestroy)

	for _, e := range w.storage.Entities() {
		w.releaseAll(w.storage.EntityComponents(e))
	}
	w.storage.Reset()

	w.counter = 0
	w.latestStep = 0
	w.latestStepData = nil
	w.bootstrapped = false
	w.logger.Debug("world reset")
	return nil
}

// resolveTypeIDs accepts component instances, schemas, and raw type ids.
func resolveTypeIDs(items []any) []TypeID {
	ids := make([]TypeID, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case *Component:
			ids = append(ids, v.typeID)
		case *Schema:
			ids = append(ids, v.typeID)
		case TypeID:
			ids = append(ids, v)
		case int:
			ids = append(ids, TypeID(v))
		}
	}
	return ids
}
