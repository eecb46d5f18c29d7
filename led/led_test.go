// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package led_test

import (
	"testing"

	"github.com/intuitivelabs/swtimers/hostsim"
	"github.com/intuitivelabs/swtimers/led"
	"github.com/intuitivelabs/swtimers/swt"
)

// fixture wires one swt.Instance, one led.Instance with a single record, and
// a hostsim.Clock/GPIOPin pair, all driven tick-by-tick for deterministic
// pattern-sequence assertions.
type fixture struct {
	t     *testing.T
	clock hostsim.Clock
	swt   swt.Instance
	leds  led.Instance
	pin   hostsim.GPIOPin
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{}
	f.t = t
	var slots [4]swt.Slot
	hw := swt.HWIface{
		IsrEnable:   f.clock.IsrEnable,
		IsrDisable:  f.clock.IsrDisable,
		TickMs:      1,
		HWStart:     f.clock.HWStart,
		HWStop:      f.clock.HWStop,
		HWIsStarted: f.clock.HWIsStarted,
	}
	if err := f.swt.Init(hw, 4, slots[:]); err != nil {
		t.Fatalf("swt.Init: %v", err)
	}
	f.clock.IsrFn = f.swt.Isr

	var records [1]led.Record
	if err := f.leds.Init(led.HWIface{
		GpioWrite: func(ctx interface{}, pinIdx int, level int) {
			f.pin.Write(level)
		},
		GpioToggle: func(ctx interface{}, pinIdx int) {
			f.pin.Toggle()
		},
	}, &f.swt, 1, records[:]); err != nil {
		t.Fatalf("led.Init: %v", err)
	}
	if err := f.leds.Configure(0, 0, 0, true); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return f
}

// tick advances one simulated millisecond: ISR then loop-mode dispatch.
func (f *fixture) tick() {
	f.clock.Step()
	f.swt.Task()
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.tick()
	}
}

// TestS3SimpleBlink reproduces scenario S3.
func TestS3SimpleBlink(t *testing.T) {
	f := newFixture(t)
	if err := f.leds.Blink(0, 2, 50, 100, 0); err != nil {
		t.Fatalf("Blink: %v", err)
	}
	if f.pin.Level() != 1 {
		t.Fatalf("level at t=0 = %d, want on (1)", f.pin.Level())
	}
	f.ticks(50)
	if f.pin.Level() != 0 {
		t.Fatalf("level at t=50 = %d, want off (0)", f.pin.Level())
	}
	f.ticks(100)
	if f.pin.Level() != 1 {
		t.Fatalf("level at t=150 = %d, want on (1)", f.pin.Level())
	}
	f.ticks(50)
	if f.pin.Level() != 0 {
		t.Fatalf("level at t=200 = %d, want off (0)", f.pin.Level())
	}
	// permanently off: further ticks must not resume the pattern.
	f.ticks(500)
	if f.pin.Level() != 0 {
		t.Fatalf("level long after series end = %d, want off (0)", f.pin.Level())
	}
}

// TestS4Meander reproduces scenario S4: infinite on-for-d/off-for-d.
func TestS4Meander(t *testing.T) {
	f := newFixture(t)
	const d = 20
	if err := f.leds.Meander(0, d); err != nil {
		t.Fatalf("Meander: %v", err)
	}
	for cycle := 0; cycle < 5; cycle++ {
		if f.pin.Level() != 1 {
			t.Fatalf("cycle %d: level at pulse start = %d, want on (1)", cycle, f.pin.Level())
		}
		f.ticks(d)
		if f.pin.Level() != 0 {
			t.Fatalf("cycle %d: level at pause start = %d, want off (0)", cycle, f.pin.Level())
		}
		f.ticks(d)
	}
}

func TestBlinkRejectsBadParameters(t *testing.T) {
	f := newFixture(t)
	if err := f.leds.Blink(0, 0, 50, 0, 0); err != led.ErrInvalidParameters {
		t.Fatalf("Blink with series=0 = %v, want ErrInvalidParameters", err)
	}
	if err := f.leds.Blink(0, 1, 0, 0, 0); err != led.ErrInvalidParameters {
		t.Fatalf("Blink with pulse_ms=0 = %v, want ErrInvalidParameters", err)
	}
	if err := f.leds.BlinkExt(0, 2, 50, 10, 50, 0, false); err != led.ErrInvalidParameters {
		t.Fatalf("BlinkExt with too-small period = %v, want ErrInvalidParameters", err)
	}
}

func TestOffAbandonsPattern(t *testing.T) {
	f := newFixture(t)
	f.leds.Blink(0, 5, 50, 50, 500)
	f.ticks(10)
	if err := f.leds.Off(0); err != nil {
		t.Fatalf("Off: %v", err)
	}
	if f.pin.Level() != 0 {
		t.Fatalf("level after Off = %d, want off (0)", f.pin.Level())
	}
	// a stray expiry of the still-armed timer must be a no-op in Disabled.
	f.ticks(100)
	if f.pin.Level() != 0 {
		t.Fatalf("level after stray expiry post-Off = %d, want off (0)", f.pin.Level())
	}
}
