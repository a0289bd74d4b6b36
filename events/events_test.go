package events

import "testing"

func TestPublishOrder(t *testing.T) {
	bus := NewBus()

	var seen []string
	bus.Subscribe(func(e Event) {
		seen = append(seen, e.EventName())
	})
	var second []string
	bus.Subscribe(func(e Event) {
		second = append(second, e.EventName())
	})

	bus.Publish(ProjectRegistered{ProjectID: "p1"})
	bus.Publish(DurationAdded{Days: 30})
	bus.Publish(Staked{StakeID: 1, Owner: "alice", NetAmount: 100})
	bus.Publish(Unstaked{StakeID: 1, Owner: "alice", GrossAmount: 100})

	want := []string{"ProjectRegistered", "DurationAdded", "Staked", "Unstaked"}
	if len(seen) != len(want) {
		t.Fatalf("saw %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("position %d: %s, want %s", i, seen[i], want[i])
		}
		if second[i] != want[i] {
			t.Errorf("second subscriber position %d: %s", i, second[i])
		}
	}
}
