package events

import (
	"sync"
	"testing"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var got []EventType
	bus.Subscribe(func(e Event) { got = append(got, e.Type) })
	bus.Subscribe(func(e Event) { got = append(got, e.Type) })

	bus.Publish(Event{Type: CareRecorded, Message: "watered"})

	if len(got) != 2 {
		t.Errorf("delivered to %d subscribers, want 2", len(got))
	}
}

func TestBus_FiltersByType(t *testing.T) {
	bus := NewBus()

	var overdue, recorded int
	bus.Subscribe(func(e Event) { overdue++ }, CareOverdue)
	bus.Subscribe(func(e Event) { recorded++ }, CareRecorded)

	bus.Publish(Event{Type: CareOverdue})
	bus.Publish(Event{Type: CareOverdue})
	bus.Publish(Event{Type: CareRecorded})

	if overdue != 2 {
		t.Errorf("overdue handler ran %d times, want 2", overdue)
	}
	if recorded != 1 {
		t.Errorf("recorded handler ran %d times, want 1", recorded)
	}
}

func TestBus_SetsTimestamp(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe(func(e Event) { received = e })

	bus.Publish(Event{Type: PlantCreated})

	if received.Timestamp.IsZero() {
		t.Error("expected Publish to set a timestamp")
	}
}

func TestBus_SurvivesSubscriberPanic(t *testing.T) {
	bus := NewBus()

	var after int
	bus.Subscribe(func(e Event) { panic("boom") })
	bus.Subscribe(func(e Event) { after++ })

	bus.Publish(Event{Type: CareDue})

	if after != 1 {
		t.Errorf("subscriber after panic ran %d times, want 1", after)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: CareRecorded})
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler ran %d times, want 10", count)
	}
}
