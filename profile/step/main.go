// Profiling:
// go build ./profile/step
// go tool pprof -http=":8000" -nodefraction=0.001 ./step cpu.pprof

package main

import (
	"github.com/TheBitDrifter/foreman"
	"github.com/pkg/profile"
)

func main() {
	steps := 10000
	entities := 1000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(steps, entities)
	p.Stop()
}

func run(steps, numEntities int) {
	registry := foreman.Factory.NewRegistry()
	position, _ := registry.RegisterSchema("position", []foreman.Field{
		{Name: "x", Default: foreman.Zero},
		{Name: "y", Default: foreman.Zero},
	})
	velocity, _ := registry.RegisterSchema("velocity", []foreman.Field{
		{Name: "x", Default: foreman.DefaultOf(1)},
		{Name: "y", Default: foreman.DefaultOf(2)},
	})

	w := foreman.Factory.NewWorld(foreman.WithRegistry(registry))

	for range numEntities {
		w.Create(position.New(), velocity.New())
	}

	moving := w.Query().And(position, velocity)
	w.AddSystem(func(w *foreman.World, data any) {
		cursor := w.NewCursor(moving)
		for cursor.Next() {
			pos := cursor.Component(position)
			vel := cursor.Component(velocity)
			view := pos.Observed()
			view.Set("x", view.Get("x").(int)+vel.Fields().Get("x").(int))
			view.Set("y", view.Get("y").(int)+vel.Fields().Get("y").(int))
		}
	})

	// Churn one entity per step to exercise the deferred op path.
	w.AddSystem(func(w *foreman.World, data any) {
		e := w.Create(position.New())
		w.Destroy(e)
	})

	for range steps {
		w.Step(nil)
	}
}
