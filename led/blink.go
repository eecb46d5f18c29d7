// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package led

// BlinkExt arms a fully parameterized blink pattern on idx: series pulses
// (each pulse_ms long, separated by pause_ms), optionally repeating every
// period_ms, after an initial delay_ms, with polarity swapped if inverted.
//
// series must be >= 1 and pulse_ms > 0. period_ms == 0 means a single
// series (no repeat); otherwise period_ms must be >= series*pulse_ms +
// (series-1)*pause_ms, and wait_ms is derived as the remainder.
func (in *Instance) BlinkExt(idx int, series int, pulseMs, pauseMs,
	periodMs, delayMs uint32, inverted bool) error {

	rec, err := in.checkIdx(idx)
	if err != nil {
		return err
	}
	if !rec.configured {
		ERR("BlinkExt called on unconfigured index %d\n", idx)
		return ErrNotConfigured
	}
	if series < 1 || pulseMs == 0 {
		BUG("BlinkExt called with series=%d pulse_ms=%d\n", series, pulseMs)
		return ErrInvalidParameters
	}
	minPeriod := uint32(series)*pulseMs + uint32(series-1)*pauseMs
	var waitMs uint32
	if periodMs != 0 {
		if periodMs < minPeriod {
			BUG("BlinkExt called with period_ms=%d < minimum %d\n",
				periodMs, minPeriod)
			return ErrInvalidParameters
		}
		waitMs = periodMs - minPeriod
	}

	rec.series = series
	rec.pulseMs = pulseMs
	rec.pauseMs = pauseMs
	rec.periodMs = periodMs
	rec.waitMs = waitMs
	rec.delayMs = delayMs
	rec.isInverted = inverted

	in.start(idx, rec)
	return nil
}

// Blink is BlinkExt with delay_ms=0 and inverted=false.
func (in *Instance) Blink(idx int, series int, pulseMs, pauseMs, periodMs uint32) error {
	return in.BlinkExt(idx, series, pulseMs, pauseMs, periodMs, 0, false)
}

// Meander is the infinitely-repeating equal-on/off pattern: a single pulse
// of d followed by a pause of d, forever. Equivalent to
// BlinkExt(series=1, pulse=d, pause=d, period=2d, delay=0, inverted=false).
func (in *Instance) Meander(idx int, d uint32) error {
	return in.BlinkExt(idx, 1, d, d, 2*d, 0, false)
}
