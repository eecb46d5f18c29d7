// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package hostsim is a host-side stand-in for the microcontroller
// peripherals the swt/led/btn drivers expect: a gated hardware tick and a
// pair of GPIO simulators. It plays the same role for this module's tests
// that a time.Ticker-driven goroutine plays for the teacher's timer wheel,
// without introducing any concurrency into the drivers themselves — Clock
// only ever calls its IsrFn (typically swt.Instance.Isr), once per tick, the
// way a real tick interrupt would; calling Task is left to the caller's own
// main loop.
package hostsim

import (
	"sync"
	"time"

	"github.com/intuitivelabs/timestamp"

	"github.com/intuitivelabs/swtimers/internal/mathx"
)

// maxCatchUpTicks bounds how many missed ticks Run() will replay after a
// scheduling delay, so a suspended host process cannot cause an unbounded
// burst of Isr() calls on resume.
const maxCatchUpTicks = 1000

// Clock simulates the gated hardware tick peripheral SWT drives through
// IsrEnable/IsrDisable/HWStart/HWStop/HWIsStarted. IsrFn is called once per
// simulated tick; set it to a bound swt.Instance's Isr method.
type Clock struct {
	TickMs uint32
	IsrFn  func()

	mu      sync.Mutex
	started bool

	lastTickT timestamp.TS
	cancel    chan struct{}
	wg        sync.WaitGroup
}

// IsrEnable/IsrDisable bracket the critical sections the swt/btn packages
// use to guard shared per-slot fields; on a single-core host they reduce to
// a plain mutex, standing in for the real disable/enable-interrupts pair.
func (c *Clock) IsrEnable(ctx interface{})  { c.mu.Unlock() }
func (c *Clock) IsrDisable(ctx interface{}) { c.mu.Lock() }

// HWStart/HWStop/HWIsStarted implement the optional hardware-control triple;
// they only track whether the simulated tick is "running" for the driver's
// hardware-timer gating logic, Step/Run remain callable either way.
func (c *Clock) HWStart(ctx interface{}) {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

func (c *Clock) HWStop(ctx interface{}) {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
}

func (c *Clock) HWIsStarted(ctx interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Step advances the simulated clock by exactly one tick, invoking IsrFn.
// Intended for deterministic, tick-by-tick driven tests.
//
// Step takes the same mutex IsrEnable/IsrDisable use, standing in for real
// hardware's guarantee that interrupts are already masked on ISR entry: it
// serializes the simulated ISR against any foreground critical section
// without the two ever deadlocking, since IsrDisable/IsrEnable are always
// paired within a single driver call and never held across a blocking call.
func (c *Clock) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IsrFn != nil {
		c.IsrFn()
	}
}

// StepN calls Step n times.
func (c *Clock) StepN(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

// Run starts a wall-clock goroutine that calls Step once per TickMs,
// catching up (bounded by maxCatchUpTicks) if the host process was
// descheduled for longer than one tick. Mirrors the teacher's
// ticker()/Start() drift-tracking approach, adapted to a fixed-size replay
// instead of a wheel re-adjustment.
func (c *Clock) Run() {
	c.cancel = make(chan struct{})
	c.lastTickT = timestamp.Now()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		d := time.Duration(c.TickMs) * time.Millisecond
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-c.cancel:
				return
			case <-ticker.C:
				now := timestamp.Now()
				elapsed := now.Sub(c.lastTickT)
				missed := mathx.Clamp(uint32(elapsed/d), 1, maxCatchUpTicks)
				if DBGon() && missed > 1 {
					DBG("clock: catching up %d ticks\n", missed)
				}
				for i := uint32(0); i < missed; i++ {
					c.Step()
				}
				c.lastTickT = now
			}
		}
	}()
}

// Shutdown stops the Run() goroutine, if any, and waits for it to exit.
func (c *Clock) Shutdown() {
	if c.cancel != nil {
		close(c.cancel)
	}
	c.wg.Wait()
}
