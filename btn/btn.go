// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package btn synthesizes Pressed/Released/Hold/Double button events from a
// raw GPIO level, sharing one swt.Instance timer slot per button across its
// debounce, hold and double-click sub-phases.
package btn

import (
	"github.com/intuitivelabs/swtimers/swt"
)

const NAME = "btn"

// CheckType selects how a button's raw level is obtained.
type CheckType uint8

const (
	Disabled CheckType = iota
	Polling
	IsrNotified
)

// Event is a bitmask of button events; the exact bit values are preserved
// for API compatibility with callers porting event-handling logic.
type Event uint8

const (
	Pressed  Event = 0x01
	Released Event = 0x02
	Hold     Event = 0x04
	Double   Event = 0x08
)

// TimeSettings groups a button's three sub-feature timeouts. Zero disables
// the corresponding sub-feature: no timer is armed for it, and with
// BouncingMs == 0 a raw edge is reported as Pressed/Released at once.
type TimeSettings struct {
	BouncingMs    uint32
	HoldMs        uint32
	DoubleClickMs uint32
}

// Handler is invoked at the end of a button's Task step with any nonzero
// event mask synthesized during that pass.
type Handler func(idx int, event Event, arg interface{})

// HWIface is the hardware collaborator BTN samples. IsrEnable/IsrDisable are
// only needed in IsrNotified mode, to bracket is_pressed_raw/is_changed.
type HWIface struct {
	Ctx        interface{}
	GpioRead   func(ctx interface{}, pinIdx int) bool
	IsrEnable  func(ctx interface{})
	IsrDisable func(ctx interface{})
}

// Record is one button's configuration and event state machine. Its zero
// value is an unconfigured, Disabled record.
type Record struct {
	gpioPin      int
	timerID      int
	isPressedLow bool
	checkType    CheckType
	configured   bool

	settings TimeSettings

	isPressedRaw       bool
	isChanged          bool
	isPressedDebounced bool

	isDebouncing     bool
	isHolding        bool
	isDoubleClicking bool

	handler Handler
	arg     interface{}
}

// Instance drives a table of button records, each bound to a timer slot on a
// shared swt.Instance.
type Instance struct {
	hw      HWIface
	swt     *swt.Instance
	records []Record
}

// Init wires hw and sw and the backing table. n must be > 0 and
// len(table) >= n; only table[:n] is used.
func (in *Instance) Init(hw HWIface, sw *swt.Instance, n int, table []Record) error {
	if n <= 0 || sw == nil || hw.GpioRead == nil {
		BUG("Init called with invalid parameters (n=%d sw=%v)\n", n, sw)
		return ErrInvalidParameters
	}
	if len(table) < n {
		BUG("Init called with table len %d < n %d\n", len(table), n)
		return ErrTableTooSmall
	}
	in.hw = hw
	in.swt = sw
	in.records = table[:n]
	for i := range in.records {
		in.records[i] = Record{}
	}
	return nil
}

func (in *Instance) checkIdx(idx int) (*Record, error) {
	if in.records == nil {
		BUG("operation on uninitialized instance\n")
		return nil, ErrNotInitialized
	}
	if idx < 0 || idx >= len(in.records) {
		BUG("idx %d out of range [0,%d)\n", idx, len(in.records))
		return nil, ErrIndexOutOfRange
	}
	return &in.records[idx], nil
}

// Configure binds record idx to a GPIO pin and a swt timer slot, and sets
// its sampling mode, timing and event callback.
func (in *Instance) Configure(idx int, gpioPin, timerID int, isPressedLow bool,
	checkType CheckType, settings TimeSettings, handler Handler, arg interface{}) error {

	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	*rec = Record{
		gpioPin:      gpioPin,
		timerID:      timerID,
		isPressedLow: isPressedLow,
		checkType:    checkType,
		configured:   true,
		settings:     settings,
		handler:      handler,
		arg:          arg,
	}
	return nil
}

func (rec *Record) resolveLevel(gpioHigh bool) bool {
	if rec.isPressedLow {
		return !gpioHigh
	}
	return gpioHigh
}

// Isr notifies button idx of a pin-level change. It is only effective when
// idx's check_type is IsrNotified; calls on a Polling or Disabled button are
// ignored.
func (in *Instance) Isr(idx int, gpioState bool) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	if rec.checkType != IsrNotified {
		return nil
	}
	pressed := rec.resolveLevel(gpioState)
	if in.hw.IsrDisable != nil {
		in.hw.IsrDisable(in.hw.Ctx)
	}
	rec.isPressedRaw = pressed
	rec.isChanged = true
	if in.hw.IsrEnable != nil {
		in.hw.IsrEnable(in.hw.Ctx)
	}
	return nil
}

// rawChange consumes one raw-edge observation for rec, returning whether a
// new edge occurred. For Polling it samples the GPIO directly; for
// IsrNotified it drains the is_changed flag set by Isr.
func (in *Instance) rawChange(rec *Record) bool {
	switch rec.checkType {
	case Polling:
		level := in.hw.GpioRead(in.hw.Ctx, rec.gpioPin)
		pressed := rec.resolveLevel(level)
		if pressed == rec.isPressedRaw {
			return false
		}
		rec.isPressedRaw = pressed
		return true
	case IsrNotified:
		if in.hw.IsrDisable != nil {
			in.hw.IsrDisable(in.hw.Ctx)
		}
		changed := rec.isChanged
		rec.isChanged = false
		if in.hw.IsrEnable != nil {
			in.hw.IsrEnable(in.hw.Ctx)
		}
		return changed
	default:
		return false
	}
}

func (in *Instance) timerStopped(rec *Record) bool {
	running, _, _ := in.swt.IsRun(rec.timerID)
	return !running
}

// Task runs one synthesis pass over every non-Disabled button, in index
// order, delivering any nonzero event mask to its handler.
func (in *Instance) Task() error {
	if in.records == nil {
		BUG("Task on uninitialized instance\n")
		return ErrNotInitialized
	}
	for idx := range in.records {
		rec := &in.records[idx]
		if rec.checkType == Disabled {
			continue
		}
		in.taskOne(idx, rec)
	}
	return nil
}

// taskOne runs the six-step event synthesis for a single button (raw change,
// debounce completion, hold completion, on Pressed, double-click window
// expiry, on Released). Each step's guard is re-evaluated against state possibly already
// mutated earlier in this same pass, which is what lets a single shared
// timer slot serve debounce, hold and double-click in sequence.
func (in *Instance) taskOne(idx int, rec *Record) {
	var event Event
	var pressedEmitted, releasedEmitted bool

	// 1. Raw change.
	if in.rawChange(rec) {
		if rec.settings.BouncingMs > 0 {
			_ = in.swt.StartNoHandler(rec.timerID, rec.settings.BouncingMs)
			rec.isDebouncing = true
			rec.isHolding = false
		} else {
			rec.isPressedDebounced = rec.isPressedRaw
			rec.isHolding = false
			if rec.isPressedDebounced {
				event |= Pressed
				pressedEmitted = true
			} else {
				event |= Released
				releasedEmitted = true
			}
		}
	}

	// 2. Debounce completion.
	if rec.isDebouncing && in.timerStopped(rec) {
		rec.isDebouncing = false
		rec.isPressedDebounced = rec.isPressedRaw
		rec.isHolding = false
		if rec.isPressedDebounced {
			event |= Pressed
			pressedEmitted = true
		} else {
			event |= Released
			releasedEmitted = true
		}
	}

	// 3. Hold completion.
	if rec.isHolding && in.timerStopped(rec) {
		rec.isHolding = false
		event |= Hold
	}

	// 4. On Pressed.
	if pressedEmitted {
		if rec.isDoubleClicking {
			rec.isDoubleClicking = false
			event |= Double
			_ = in.swt.Stop(rec.timerID)
		} else if rec.settings.HoldMs > 0 {
			_ = in.swt.StartNoHandler(rec.timerID, rec.settings.HoldMs)
			rec.isHolding = true
		}
	}

	// 5. Double-click window expiry.
	if rec.isDoubleClicking && in.timerStopped(rec) {
		rec.isDoubleClicking = false
	}

	// 6. On Released.
	if releasedEmitted && rec.settings.DoubleClickMs > 0 {
		_ = in.swt.StartNoHandler(rec.timerID, rec.settings.DoubleClickMs)
		rec.isDoubleClicking = true
	}

	if event != 0 && rec.handler != nil {
		rec.handler(idx, event, rec.arg)
	}
}
