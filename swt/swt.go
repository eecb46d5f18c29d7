// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package swt multiplexes a single periodic hardware tick into a
// caller-sized array of independent one-shot or periodic software timers.
//
// A slot is advanced from the hardware-tick interrupt context by Isr and
// drained from the foreground "task" context by Task. All read-modify-write
// access to a slot's is_run/is_waiting/counter fields that can race with Isr
// is bracketed by the hw.IsrDisable/hw.IsrEnable critical section supplied
// at Init time; nothing in this package spawns a goroutine or allocates
// after Init.
package swt

const NAME = "swt"

// Mode selects whether a slot fires once or repeatedly, and whether its
// handler runs inline from Isr or is deferred to the next Task call.
type Mode uint8

const (
	SingleFromLoop Mode = iota
	PeriodicFromLoop
	SingleFromISR
	PeriodicFromISR
)

func (m Mode) periodic() bool {
	return m == PeriodicFromLoop || m == PeriodicFromISR
}

func (m Mode) fromISR() bool {
	return m == SingleFromISR || m == PeriodicFromISR
}

// FullHandler is the two-argument callback form: arg1 and arg2 are the
// opaque values passed to Start.
type FullHandler func(idx int, arg1, arg2 interface{})

// SimpleHandler is the nullary callback form used by StartSimple.
type SimpleHandler func()

// HWIface is the hardware collaborator SWT drives and is driven by. Ctx is
// passed back to every callback unchanged; the driver never dereferences it.
//
// IsrEnable/IsrDisable/TickMs are mandatory. HWStart/HWStop/HWIsStarted must
// either all be set (gated hardware tick) or all be nil (always-on tick,
// gating is a no-op).
type HWIface struct {
	Ctx interface{}

	IsrEnable  func(ctx interface{})
	IsrDisable func(ctx interface{})
	TickMs     uint32

	HWStart     func(ctx interface{})
	HWStop      func(ctx interface{})
	HWIsStarted func(ctx interface{}) bool
}

func (hw *HWIface) gated() bool {
	return hw.HWStart != nil && hw.HWStop != nil && hw.HWIsStarted != nil
}

// Slot is one software-timer record. Its zero value is a valid, stopped,
// unclaimed slot. Callers supply the backing array (e.g. var table
// [N]swt.Slot) so Instance.Init never allocates.
type Slot struct {
	threshold uint32
	counter   uint32
	mode      Mode

	isSimple bool
	full     FullHandler
	simple   SimpleHandler
	arg1     interface{}
	arg2     interface{}

	isRun     bool
	isWaiting bool
}

// Instance multiplexes hw's tick across a caller-supplied table of slots.
type Instance struct {
	hw    HWIface
	slots []Slot
}

// Init wires hw and the backing table. n must be > 0 and len(table) >= n;
// only table[:n] is used. hw must carry IsrEnable, IsrDisable and a nonzero
// TickMs, and either all of HWStart/HWStop/HWIsStarted or none of them.
func (in *Instance) Init(hw HWIface, n int, table []Slot) error {
	if n <= 0 {
		BUG("Init called with n=%d\n", n)
		return ErrInvalidParameters
	}
	if len(table) < n {
		BUG("Init called with table len %d < n %d\n", len(table), n)
		return ErrTableTooSmall
	}
	if hw.IsrEnable == nil || hw.IsrDisable == nil || hw.TickMs == 0 {
		BUG("Init called with incomplete mandatory hw interface\n")
		return ErrBadHWInterface
	}
	anyCtrl := hw.HWStart != nil || hw.HWStop != nil || hw.HWIsStarted != nil
	allCtrl := hw.HWStart != nil && hw.HWStop != nil && hw.HWIsStarted != nil
	if anyCtrl && !allCtrl {
		BUG("Init called with partial hw_start/hw_stop/hw_is_started triple\n")
		return ErrBadHWInterface
	}
	in.hw = hw
	in.slots = table[:n]
	for i := range in.slots {
		in.slots[i] = Slot{}
	}
	return nil
}

// Deinit stops every slot and the hardware tick, and zeroes all state. It is
// idempotent and safe to call on an instance that was never Init-ed.
func (in *Instance) Deinit() {
	if in.slots == nil {
		return
	}
	in.StopAll()
	in.slots = nil
	in.hw = HWIface{}
}

func (in *Instance) checkIdx(idx int) error {
	if in.slots == nil {
		BUG("operation on uninitialized instance\n")
		return ErrNotInitialized
	}
	if idx < 0 || idx >= len(in.slots) {
		BUG("idx %d out of range [0,%d)\n", idx, len(in.slots))
		return ErrIndexOutOfRange
	}
	return nil
}

func msFromTicks(ticks uint32, tickMs uint32) uint32 {
	return ticks * tickMs
}

// start is the common implementation behind Start/StartSimple/StartNoHandler.
func (in *Instance) start(idx int, ms uint32, mode Mode,
	full FullHandler, simple SimpleHandler, isSimple bool,
	arg1, arg2 interface{}) error {

	if err := in.checkIdx(idx); err != nil {
		return err
	}
	// (re)arm: stop first, exactly as the source does, so a running slot
	// can be safely reconfigured.
	in.stopUnsafe(idx)

	s := &in.slots[idx]
	s.threshold = ms / in.hw.TickMs
	s.mode = mode
	s.isSimple = isSimple
	s.full = full
	s.simple = simple
	s.arg1 = arg1
	s.arg2 = arg2

	in.hw.IsrDisable(in.hw.Ctx)
	s.counter = 0
	s.isRun = true
	s.isWaiting = false
	in.hw.IsrEnable(in.hw.Ctx)

	in.gateStart()
	return nil
}

// Start (re)arms slot idx to fire after ms milliseconds (threshold = ms /
// tick_ms, rounded down; ms == 0 fires at the next tick), dispatching to f
// with the given opaque arguments according to mode.
func (in *Instance) Start(idx int, ms uint32, mode Mode, f FullHandler,
	arg1, arg2 interface{}) error {
	if f == nil {
		ERR("Start called with nil handler\n")
		return ErrInvalidParameters
	}
	return in.start(idx, ms, mode, f, nil, false, arg1, arg2)
}

// StartSimple is Start with a nullary callback.
func (in *Instance) StartSimple(idx int, ms uint32, mode Mode,
	f SimpleHandler) error {
	if f == nil {
		ERR("StartSimple called with nil handler\n")
		return ErrInvalidParameters
	}
	return in.start(idx, ms, mode, nil, f, true, nil, nil)
}

// StartNoHandler arms slot idx for ms milliseconds with no dispatch at all;
// the caller is expected to poll IsRun. Implicitly Single-from-Loop.
func (in *Instance) StartNoHandler(idx int, ms uint32) error {
	return in.start(idx, ms, SingleFromLoop, nil, nil, false, nil, nil)
}

// stopUnsafe clears is_run/is_waiting/counter for idx without touching the
// hardware-timer gate. Caller must hold checkIdx(idx) == nil.
func (in *Instance) stopUnsafe(idx int) {
	s := &in.slots[idx]
	in.hw.IsrDisable(in.hw.Ctx)
	s.isRun = false
	s.isWaiting = false
	s.counter = 0
	in.hw.IsrEnable(in.hw.Ctx)
}

// Stop clears is_run, is_waiting and counter for idx, then re-evaluates the
// hardware-timer gate.
func (in *Instance) Stop(idx int) error {
	if err := in.checkIdx(idx); err != nil {
		return err
	}
	in.stopUnsafe(idx)
	in.gateStop()
	return nil
}

// StopAll stops every slot, then the hardware tick.
func (in *Instance) StopAll() error {
	if in.slots == nil {
		BUG("StopAll on uninitialized instance\n")
		return ErrNotInitialized
	}
	for idx := range in.slots {
		in.stopUnsafe(idx)
	}
	in.gateStop()
	return nil
}

// IsRun reports whether slot idx is running (is_run or is_waiting) and, if
// so, the elapsed time in milliseconds (counter * tick_ms); otherwise 0.
func (in *Instance) IsRun(idx int) (bool, uint32, error) {
	if err := in.checkIdx(idx); err != nil {
		return false, 0, err
	}
	s := &in.slots[idx]
	in.hw.IsrDisable(in.hw.Ctx)
	running := s.isRun || s.isWaiting
	counter := s.counter
	in.hw.IsrEnable(in.hw.Ctx)
	if !running {
		return false, 0, nil
	}
	return true, msFromTicks(counter, in.hw.TickMs), nil
}

// Task drains every slot with is_waiting set, invoking its handler, then
// re-evaluates the hardware-timer gate. Slots are serviced in index order.
func (in *Instance) Task() error {
	if in.slots == nil {
		BUG("Task on uninitialized instance\n")
		return ErrNotInitialized
	}
	for idx := range in.slots {
		s := &in.slots[idx]

		in.hw.IsrDisable(in.hw.Ctx)
		waiting := s.isWaiting
		in.hw.IsrEnable(in.hw.Ctx)
		if !waiting {
			continue
		}

		if s.isSimple {
			if s.simple != nil {
				s.simple()
			}
		} else if s.full != nil {
			s.full(idx, s.arg1, s.arg2)
		}

		in.hw.IsrDisable(in.hw.Ctx)
		s.isWaiting = false
		in.hw.IsrEnable(in.hw.Ctx)
	}
	in.gateStop()
	return nil
}

// Isr advances every running slot's counter by one tick. It must be called
// from the hardware-tick interrupt; handlers it dispatches inline
// (SingleFromISR/PeriodicFromISR) run with interrupts already masked by
// hardware entry and must not reenter Init/Deinit/Task/Isr.
func (in *Instance) Isr() {
	if in.slots == nil {
		BUG("Isr on uninitialized instance\n")
		return
	}
	for idx := range in.slots {
		s := &in.slots[idx]
		if !s.isRun {
			continue
		}
		s.counter++
		if s.counter < s.threshold {
			continue
		}
		if s.mode.periodic() {
			s.counter = 0
		} else {
			s.isRun = false
		}
		hasHandler := s.full != nil || s.simple != nil
		if !hasHandler {
			continue
		}
		if s.mode.fromISR() {
			if s.isSimple {
				s.simple()
			} else {
				s.full(idx, s.arg1, s.arg2)
			}
		} else {
			s.isWaiting = true
		}
	}
}

// gateStart starts the hardware tick on first slot arm, if the interface
// exposes hw control. A no-op interface (always-on tick) leaves this a no-op.
func (in *Instance) gateStart() {
	if !in.hw.gated() {
		return
	}
	if !in.hw.HWIsStarted(in.hw.Ctx) {
		in.hw.HWStart(in.hw.Ctx)
	}
}

// gateStop stops the hardware tick once no slot has is_run or is_waiting.
func (in *Instance) gateStop() {
	if !in.hw.gated() {
		return
	}
	for i := range in.slots {
		if in.slots[i].isRun || in.slots[i].isWaiting {
			return
		}
	}
	if in.hw.HWIsStarted(in.hw.Ctx) {
		in.hw.HWStop(in.hw.Ctx)
	}
}
