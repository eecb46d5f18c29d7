// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hostsim

import "sync"

// GPIOPin simulates one output-capable, readable pin: LED tests observe the
// level history it was driven to, BTN tests drive its level to synthesize
// raw button edges.
type GPIOPin struct {
	mu      sync.Mutex
	level   int
	history []int
}

// Write implements led.HWIface's gpio_write: level 0 is logical low, any
// nonzero is logical high.
func (p *GPIOPin) Write(level int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.history = append(p.history, level)
}

// Toggle implements led.HWIface's gpio_toggle.
func (p *GPIOPin) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.level != 0 {
		p.level = 0
	} else {
		p.level = 1
	}
	p.history = append(p.history, p.level)
}

// Level returns the pin's current driven level.
func (p *GPIOPin) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// History returns every level this pin was ever driven to, in order.
func (p *GPIOPin) History() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.history))
	copy(out, p.history)
	return out
}

// SetHigh/SetLow simulate an external actor (a finger on a button) changing
// a readable pin's level; Read implements btn.HWIface's gpio_read.
func (p *GPIOPin) SetHigh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = 1
}

func (p *GPIOPin) SetLow() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = 0
}

func (p *GPIOPin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level != 0
}

// Pins is a small fixed-size pool of GPIOPin, indexed by pin number, backed
// by a caller-supplied array so it allocates nothing beyond that array.
type Pins struct {
	pins []GPIOPin
}

// NewPins wraps a caller-supplied backing array of GPIOPin.
func NewPins(table []GPIOPin) *Pins {
	return &Pins{pins: table}
}

func (p *Pins) Pin(idx int) *GPIOPin {
	return &p.pins[idx]
}

// WriteFunc/ToggleFunc/ReadFunc adapt Pins to the led/btn HWIface function
// fields, closing over p and resolving the pin by pinIdx; ctx is ignored.
func (p *Pins) WriteFunc() func(ctx interface{}, pinIdx int, level int) {
	return func(ctx interface{}, pinIdx int, level int) {
		p.Pin(pinIdx).Write(level)
	}
}

func (p *Pins) ToggleFunc() func(ctx interface{}, pinIdx int) {
	return func(ctx interface{}, pinIdx int) {
		p.Pin(pinIdx).Toggle()
	}
}

func (p *Pins) ReadFunc() func(ctx interface{}, pinIdx int) bool {
	return func(ctx interface{}, pinIdx int) bool {
		return p.Pin(pinIdx).Read()
	}
}
