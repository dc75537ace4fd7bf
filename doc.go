/*
Package foreman provides the transactional world coordinator for an
Entity-Component-System (ECS) runtime.

Foreman owns entity identity, mediates every structural change to entity
composition through a deferred operation queue, drives a fixed system pipeline
once per step, and tracks observed component mutations for downstream
consumers such as serializers and replication layers. Physical grouping of
entities by component signature is handled by an archetype storage facade
built on signature masks.

Core Concepts:

  - Entity: a dense integer identity aggregating components. Ids are never
    reused within a world's lifetime.
  - Component: a pooled, schema-shaped value with a lifecycle state
    (Attaching, Attached, Detaching, Detached).
  - Op: a deferred structural request (Spawn/Attach/Detach/Destroy) applied
    atomically between steps.
  - System: a callback invoked once per step, in registration order.
  - Topic: a typed event queue flushed once per step, before systems.
  - Observed view: a wrapper over a component's value tree that records the
    net effect of mutations per leaf.

Basic Usage:

	registry := foreman.Factory.NewRegistry()
	position, _ := registry.RegisterSchema("position", []foreman.Field{
		{Name: "x", Default: foreman.Zero},
		{Name: "y", Default: foreman.Zero},
	})

	world := foreman.Factory.NewWorld(foreman.WithRegistry(registry))

	e := world.Create(position.New())
	world.AddSystem(func(w *foreman.World, data any) {
		pos, _ := w.Get(e, position)
		view := w.Observed(pos)
		view.Set("x", view.Get("x").(int)+1)
	})

	world.Step(nil)

Structural requests issued during a step are not applied within that step;
they become visible to systems at the start of the next step, in enqueue
order. Foreman is the coordination layer of the Bappa Framework but also
works as a standalone library.
*/
package foreman
