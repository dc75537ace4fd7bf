package foreman

import "testing"

func TestTopicFlushDeliversInOrder(t *testing.T) {
	topic := NewTopic[int]()

	var got []int
	topic.Subscribe(func(v int) { got = append(got, v) })
	topic.Subscribe(func(v int) { got = append(got, v*10) })

	topic.Publish(1)
	topic.Publish(2)
	if topic.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", topic.Pending())
	}

	topic.Flush()

	want := []int{1, 10, 2, 20}
	if len(got) != len(want) {
		t.Fatalf("delivered = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivered = %v, want %v", got, want)
		}
	}
	if topic.Pending() != 0 {
		t.Error("flush should empty the queue")
	}
}

func TestTopicPublishDuringFlushWaits(t *testing.T) {
	topic := NewTopic[int]()

	delivered := 0
	topic.Subscribe(func(v int) {
		delivered++
		if v == 1 {
			topic.Publish(2)
		}
	})

	topic.Publish(1)
	topic.Flush()

	if delivered != 1 {
		t.Errorf("delivered = %d; events published mid-flush wait for the next flush", delivered)
	}
	if topic.Pending() != 1 {
		t.Errorf("pending = %d, want 1", topic.Pending())
	}

	topic.Flush()
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
}

func TestTopicClearDropsEvents(t *testing.T) {
	topic := NewTopic[string]()

	delivered := 0
	topic.Subscribe(func(string) { delivered++ })

	topic.Publish("a")
	topic.Clear()
	topic.Flush()

	if delivered != 0 {
		t.Errorf("delivered = %d; Clear drops events without delivery", delivered)
	}
}

func TestWorldFlushesTopicsInRegistrationOrder(t *testing.T) {
	w := Factory.NewWorld()

	var order []string
	first := NewTopic[struct{}]()
	first.Subscribe(func(struct{}) { order = append(order, "first") })
	second := NewTopic[struct{}]()
	second.Subscribe(func(struct{}) { order = append(order, "second") })

	w.AddTopic(first)
	w.AddTopic(second)

	first.Publish(struct{}{})
	second.Publish(struct{}{})
	w.Step(nil)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("flush order = %v, want [first second]", order)
	}
}
