package bus

import (
	"testing"
)

func TestOn_EmitInRegistrationOrder(t *testing.T) {
	b := New()

	var order []int
	b.On("tick", func(...any) { order = append(order, 1) })
	b.On("tick", func(...any) { order = append(order, 2) })
	b.On("tick", func(...any) { order = append(order, 3) })

	b.Emit("tick")

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handlers ran out of order: %v", order)
	}
}

func TestEmit_PassesArgs(t *testing.T) {
	b := New()

	var gotSection string
	b.On(EventSectionChanged, func(args ...any) {
		if len(args) > 0 {
			gotSection, _ = args[0].(string)
		}
	})

	b.Emit(EventSectionChanged, "search")

	if gotSection != "search" {
		t.Errorf("expected %q, got %q", "search", gotSection)
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	b := New()

	calls := 0
	unsub := b.On("tick", func(...any) { calls++ })

	b.Emit("tick")
	unsub()
	b.Emit("tick")
	unsub() // double-unsubscribe is harmless

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestUnsubscribe_RemovesOnlyOneRegistration(t *testing.T) {
	b := New()

	calls := 0
	fn := func(...any) { calls++ }
	unsub1 := b.On("tick", fn)
	b.On("tick", fn)

	unsub1()
	b.Emit("tick")

	if calls != 1 {
		t.Errorf("expected the second registration to survive, got %d calls", calls)
	}
}

func TestOnce_FiresExactlyOnce(t *testing.T) {
	b := New()

	calls := 0
	b.Once("tick", func(...any) { calls++ })

	b.Emit("tick")
	b.Emit("tick")
	b.Emit("tick")

	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
}

func TestOnce_ReentrantEmitCannotDoubleFire(t *testing.T) {
	b := New()

	calls := 0
	b.Once("tick", func(...any) {
		calls++
		// Registration must already be gone when the handler runs.
		b.Emit("tick")
	})

	b.Emit("tick")

	if calls != 1 {
		t.Errorf("re-entrant emit double-fired: %d calls", calls)
	}
}

func TestEmit_PanickingHandlerIsolated(t *testing.T) {
	b := New()

	var after bool
	b.On("tick", func(...any) { panic("boom") })
	b.On("tick", func(...any) { after = true })

	b.Emit("tick")

	if !after {
		t.Error("handler after the panicking one did not run")
	}
}

func TestOff_RemovesEventHandlers(t *testing.T) {
	b := New()

	calls := 0
	b.On("a", func(...any) { calls++ })
	b.On("b", func(...any) { calls++ })

	b.Off("a")
	b.Emit("a")
	b.Emit("b")

	if calls != 1 {
		t.Errorf("expected only event b to fire, got %d calls", calls)
	}
}

func TestClear_RemovesEverything(t *testing.T) {
	b := New()

	calls := 0
	b.On("a", func(...any) { calls++ })
	b.On("b", func(...any) { calls++ })

	b.Clear()
	b.Emit("a")
	b.Emit("b")

	if calls != 0 {
		t.Errorf("expected no handlers after Clear, got %d calls", calls)
	}
	if b.HandlerCount("a") != 0 {
		t.Error("HandlerCount non-zero after Clear")
	}
}

func TestEmit_HandlerRegisteredDuringEmitNotInvoked(t *testing.T) {
	b := New()

	lateCalls := 0
	b.On("tick", func(...any) {
		b.On("tick", func(...any) { lateCalls++ })
	})

	b.Emit("tick")
	if lateCalls != 0 {
		t.Error("handler registered mid-emit was invoked in the same emit")
	}

	b.Emit("tick")
	if lateCalls != 1 {
		t.Errorf("late handler should fire on the next emit, got %d", lateCalls)
	}
}
