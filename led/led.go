// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package led drives a GPIO-backed LED through timed blink patterns, built
// as a small state machine that reschedules itself on top of one swt.Instance
// timer slot per LED.
package led

import (
	"github.com/intuitivelabs/swtimers/swt"
)

const NAME = "led"

// BlinkState is the current phase of an LED's pattern state machine.
type BlinkState uint8

const (
	Disabled BlinkState = iota
	Pulse
	Pause
)

// HWIface is the hardware collaborator LED drives. Level 0 means logical
// low, any nonzero means logical high; is_active_high has already been
// resolved by the driver before the call.
type HWIface struct {
	Ctx        interface{}
	GpioWrite  func(ctx interface{}, pinIdx int, level int)
	GpioToggle func(ctx interface{}, pinIdx int)
}

// Record is one LED's configuration and pattern state. Its zero value is an
// unconfigured, Disabled record. Callers supply the backing table.
type Record struct {
	gpioPin      int
	timerID      int
	isActiveHigh bool
	configured   bool

	series      int
	pulseMs     uint32
	pauseMs     uint32
	periodMs    uint32
	waitMs      uint32
	delayMs     uint32
	isInverted  bool
	pulseCounter int
	blinkState  BlinkState
}

// Instance drives a table of LED records, each bound to a timer slot on a
// shared swt.Instance.
type Instance struct {
	hw      HWIface
	swt     *swt.Instance
	records []Record
}

// Init wires hw and sw and the backing table. n must be > 0 and
// len(table) >= n; only table[:n] is used.
func (in *Instance) Init(hw HWIface, sw *swt.Instance, n int, table []Record) error {
	if n <= 0 || sw == nil || hw.GpioWrite == nil {
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

// Configure binds record idx to a GPIO pin and a swt timer slot. It must be
// called once before any blink pattern is started on idx.
func (in *Instance) Configure(idx int, gpioPin, timerID int, isActiveHigh bool) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	rec.gpioPin = gpioPin
	rec.timerID = timerID
	rec.isActiveHigh = isActiveHigh
	rec.configured = true
	rec.blinkState = Disabled
	rec.pulseCounter = 0
	return nil
}

// writeLogical drives the GPIO to the resolved hardware level for the given
// logical on/off value, applying is_active_high.
func (in *Instance) writeLogical(rec *Record, logicalOn bool) {
	physicalHigh := logicalOn == rec.isActiveHigh
	lvl := 0
	if physicalHigh {
		lvl = 1
	}
	in.hw.GpioWrite(in.hw.Ctx, rec.gpioPin, lvl)
}

// SwitchOn drives the GPIO on without altering blink_state; the next timer
// expiration resumes the pattern and overwrites the level.
func (in *Instance) SwitchOn(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	in.writeLogical(rec, true)
	return nil
}

// SwitchOff is SwitchOn's off counterpart.
func (in *Instance) SwitchOff(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	in.writeLogical(rec, false)
	return nil
}

// SwitchToggle toggles the GPIO without altering blink_state.
func (in *Instance) SwitchToggle(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	if in.hw.GpioToggle != nil {
		in.hw.GpioToggle(in.hw.Ctx, rec.gpioPin)
	}
	return nil
}

// On drives the GPIO on and sets blink_state = Disabled, abandoning any
// running pattern. The timer itself is left armed; its next expiry will be a
// no-op since Disabled is a sink for onExpire.
func (in *Instance) On(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	in.writeLogical(rec, true)
	rec.blinkState = Disabled
	return nil
}

// Off is On's off counterpart.
func (in *Instance) Off(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	in.writeLogical(rec, false)
	rec.blinkState = Disabled
	return nil
}

// Toggle toggles the GPIO and sets blink_state = Disabled.
func (in *Instance) Toggle(idx int) error {
	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	if in.hw.GpioToggle != nil {
		in.hw.GpioToggle(in.hw.Ctx, rec.gpioPin)
	}
	rec.blinkState = Disabled
	return nil
}

// armPulse transitions into Pulse: GPIO to active level, arm pulse_ms.
func (in *Instance) armPulse(idx int, rec *Record) {
	in.writeLogical(rec, !rec.isInverted)
	rec.blinkState = Pulse
	_ = in.swt.Start(rec.timerID, rec.pulseMs, swt.SingleFromLoop,
		ledTimerHandler, in, idx)
}

// armPause transitions into Pause (short pause, inter-series wait, or
// pre-series delay are all the same GPIO-inactive holding phase): GPIO to
// inactive level, arm ms.
func (in *Instance) armPause(idx int, rec *Record, ms uint32) {
	in.writeLogical(rec, rec.isInverted)
	rec.blinkState = Pause
	_ = in.swt.Start(rec.timerID, ms, swt.SingleFromLoop,
		ledTimerHandler, in, idx)
}

// start begins the pattern from its initial entry point, per the validated
// parameters already stored in rec.
func (in *Instance) start(idx int, rec *Record) {
	rec.pulseCounter = 0
	if rec.delayMs > 0 {
		in.armPause(idx, rec, rec.delayMs)
		return
	}
	in.armPulse(idx, rec)
}

// ledTimerHandler is the swt.FullHandler bound to every LED's timer slot;
// arg1 is the *Instance (the driver instance) and arg2 is the LED's index
// into its records table, from which the LED record is looked up.
func ledTimerHandler(timerIdx int, arg1, arg2 interface{}) {
	in := arg1.(*Instance)
	idx := arg2.(int)
	rec := &in.records[idx]
	in.onExpire(idx, rec)
}

// onExpire advances the pattern state machine on timer expiry.
func (in *Instance) onExpire(idx int, rec *Record) {
	switch rec.blinkState {
	case Disabled:
		// Disabled is a sink: a stray expiry (e.g. after On()/Off()
		// abandoned the pattern without stopping the timer) is a no-op.
		return
	case Pause:
		// covers delay, inter-pulse pause and inter-series wait alike
		in.armPulse(idx, rec)
	case Pulse:
		in.writeLogical(rec, rec.isInverted)
		rec.pulseCounter++
		if rec.pulseCounter < rec.series {
			in.armPause(idx, rec, rec.pauseMs)
			return
		}
		rec.pulseCounter = 0
		if rec.waitMs > 0 {
			in.armPause(idx, rec, rec.waitMs)
			return
		}
		rec.blinkState = Disabled
	}
}
