// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package btn_test

import (
	"testing"

	"github.com/intuitivelabs/swtimers/btn"
	"github.com/intuitivelabs/swtimers/hostsim"
	"github.com/intuitivelabs/swtimers/swt"
)

type event struct {
	tick int
	mask btn.Event
}

// fixture wires one swt.Instance, one btn.Instance with a single
// pressed-low, polling button, and a simulated input pin, driven tick by
// tick. f.now is the number of whole milliseconds elapsed: a raw edge set
// before any tick() call is sampled by the first one, so an edge set
// immediately before calling ticks(1) lands at the same instant the
// scenarios in spec.md call t=0.
type fixture struct {
	clock  hostsim.Clock
	swt    swt.Instance
	btns   btn.Instance
	pin    hostsim.GPIOPin
	events []event
	now    int
}

func newFixture(t *testing.T, settings btn.TimeSettings) *fixture {
	f := &fixture{}
	var slots [1]swt.Slot
	hw := swt.HWIface{
		IsrEnable:   f.clock.IsrEnable,
		IsrDisable:  f.clock.IsrDisable,
		TickMs:      1,
		HWStart:     f.clock.HWStart,
		HWStop:      f.clock.HWStop,
		HWIsStarted: f.clock.HWIsStarted,
	}
	if err := f.swt.Init(hw, 1, slots[:]); err != nil {
		t.Fatalf("swt.Init: %v", err)
	}
	f.clock.IsrFn = f.swt.Isr

	var records [1]btn.Record
	if err := f.btns.Init(btn.HWIface{
		GpioRead: func(ctx interface{}, pinIdx int) bool { return f.pin.Read() },
	}, &f.swt, 1, records[:]); err != nil {
		t.Fatalf("btn.Init: %v", err)
	}
	if err := f.btns.Configure(0, 0, 0, true, btn.Polling, settings,
		func(idx int, mask btn.Event, arg interface{}) {
			f.events = append(f.events, event{tick: f.now, mask: mask})
		}, nil); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	// idle-high pin reads "released" for a pressed-low button.
	f.pin.SetHigh()
	return f
}

// tick advances one simulated millisecond: ISR then polling task. Any
// handler invoked during this call observes f.now still at its pre-tick
// value, labeling the event with the elapsed-ms count at the instant the
// condition (debounce/hold/window completion, or an unbounced raw edge) was
// observed — matching how spec.md's scenarios name instants.
func (f *fixture) tick() {
	f.clock.Step()
	f.btns.Task()
	f.now++
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.tick()
	}
}

func (f *fixture) lastEvent() (event, bool) {
	if len(f.events) == 0 {
		return event{}, false
	}
	return f.events[len(f.events)-1], true
}

// TestS5SingleClick reproduces scenario S5.
func TestS5SingleClick(t *testing.T) {
	f := newFixture(t, btn.TimeSettings{BouncingMs: 50, HoldMs: 3000, DoubleClickMs: 500})

	f.pin.SetLow() // press edge, sampled at t=0
	f.ticks(1)     // arms the 50ms debounce
	f.ticks(50)    // debounce completes
	ev, ok := f.lastEvent()
	if !ok || ev.mask != btn.Pressed || ev.tick != 50 {
		t.Fatalf("got %+v ok=%v, want Pressed at tick 50", ev, ok)
	}

	f.ticks(49)     // idle while held, t=51..99
	f.pin.SetHigh() // release edge at t=100
	f.ticks(1)      // arms the 50ms debounce
	f.ticks(50)     // debounce completes
	ev, ok = f.lastEvent()
	if !ok || ev.mask != btn.Released || ev.tick != 150 {
		t.Fatalf("got %+v ok=%v, want Released at tick 150", ev, ok)
	}

	before := len(f.events)
	f.ticks(500) // double-click window (armed at t=150) expires at t=650
	if len(f.events) != before {
		t.Fatalf("got %d new events after window expiry, want 0", len(f.events)-before)
	}
}

// TestS6DoubleClick reproduces scenario S6.
func TestS6DoubleClick(t *testing.T) {
	f := newFixture(t, btn.TimeSettings{BouncingMs: 50, HoldMs: 3000, DoubleClickMs: 500})

	f.pin.SetLow() // press at t=0
	f.ticks(1)
	f.ticks(50) // Pressed at t=50, hold armed
	if ev, _ := f.lastEvent(); ev.mask != btn.Pressed {
		t.Fatalf("got %v, want Pressed", ev.mask)
	}

	f.ticks(49)     // idle, t=51..99
	f.pin.SetHigh() // release at t=100
	f.ticks(1)
	f.ticks(50) // Released at t=150, double-click window armed
	if ev, _ := f.lastEvent(); ev.mask != btn.Released {
		t.Fatalf("got %v, want Released", ev.mask)
	}

	f.ticks(149)   // idle, t=151..299
	f.pin.SetLow() // second press at t=300
	f.ticks(1)
	f.ticks(50) // debounce completes at t=350
	ev, ok := f.lastEvent()
	if !ok || ev.tick != 350 {
		t.Fatalf("no event at tick 350, got %+v ok=%v", ev, ok)
	}
	if ev.mask&btn.Pressed == 0 || ev.mask&btn.Double == 0 {
		t.Fatalf("got mask %#x, want Pressed|Double", ev.mask)
	}
	if ev.mask&btn.Released != 0 || ev.mask&btn.Hold != 0 {
		t.Fatalf("forbidden bits set in %#x", ev.mask)
	}
}

// TestS7Hold reproduces scenario S7.
func TestS7Hold(t *testing.T) {
	f := newFixture(t, btn.TimeSettings{BouncingMs: 50, HoldMs: 3000, DoubleClickMs: 500})

	f.pin.SetLow() // press at t=0
	f.ticks(1)
	f.ticks(50) // Pressed at t=50, hold armed for 3000
	if ev, _ := f.lastEvent(); ev.mask != btn.Pressed {
		t.Fatalf("got %v, want Pressed", ev.mask)
	}

	f.ticks(3000) // hold timer expires at t=3050
	ev, ok := f.lastEvent()
	if !ok || ev.mask != btn.Hold || ev.tick != 3050 {
		t.Fatalf("got %+v ok=%v, want Hold at tick 3050", ev, ok)
	}

	f.pin.SetHigh() // eventual release
	f.ticks(1)
	f.ticks(50)
	ev, ok = f.lastEvent()
	if !ok || ev.mask != btn.Released {
		t.Fatalf("got %+v ok=%v, want Released after release", ev, ok)
	}
}

// TestEventMaskInvariant checks invariant 7: no forbidden bit combination is
// ever delivered, across a sequence of overlapping presses/releases.
func TestEventMaskInvariant(t *testing.T) {
	f := newFixture(t, btn.TimeSettings{BouncingMs: 20, HoldMs: 100, DoubleClickMs: 80})
	f.pin.SetLow()
	f.ticks(400)
	f.pin.SetHigh()
	f.ticks(400)
	f.pin.SetLow()
	f.ticks(400)
	f.pin.SetHigh()
	f.ticks(400)

	forbidden := [][2]btn.Event{
		{btn.Pressed, btn.Released},
		{btn.Released, btn.Hold},
		{btn.Released, btn.Double},
		{btn.Hold, btn.Double},
	}
	for _, ev := range f.events {
		for _, pair := range forbidden {
			if ev.mask&pair[0] != 0 && ev.mask&pair[1] != 0 {
				t.Fatalf("event %+v contains forbidden combination %#x/%#x",
					ev, pair[0], pair[1])
			}
		}
	}
}

func TestZeroDisablesSubFeature(t *testing.T) {
	f := newFixture(t, btn.TimeSettings{BouncingMs: 0, HoldMs: 0, DoubleClickMs: 0})
	f.pin.SetLow()
	f.ticks(1)
	if ev, ok := f.lastEvent(); !ok || ev.mask != btn.Pressed {
		t.Fatalf("got %+v ok=%v, want immediate Pressed with bouncing_ms=0", ev, ok)
	}
	f.ticks(10000)
	if ev, _ := f.lastEvent(); ev.mask&btn.Hold != 0 {
		t.Fatalf("got Hold with hold_ms=0, want it disabled")
	}
	f.pin.SetHigh()
	f.ticks(1)
	before := len(f.events)
	f.ticks(10000)
	if len(f.events) != before {
		t.Fatalf("got events with double_click_ms=0, want Double disabled entirely")
	}
}
