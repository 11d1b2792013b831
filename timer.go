package main

import (
	"sync"
	"time"
)

// TimerDevice is PIT channel 0 run as a one-shot counter. Writing the
// period (low byte, then high byte) to PortPITChannel0 arms it; on expiry it
// raises IRQTimer once and stays idle until it is written again.
//
// A period of 0 ms selects cycle mode: the counter is clocked by retired
// processor slices instead of wall time, which keeps runs deterministic.
type TimerDevice struct {
	mu        sync.Mutex
	pic       *PIC
	lowByte   uint8
	haveLow   bool
	periodMS  uint16
	armed     bool
	steps     int         // slices per tick in cycle mode
	countdown int         // remaining slices in cycle mode
	timer     *time.Timer // wall clock mode
	stopped   bool
}

// NewTimerDevice creates New TimerDevice. steps is the number of processor
// slices per tick in cycle mode.
func NewTimerDevice(pic *PIC, steps int) *TimerDevice {
	if steps <= 0 {
		steps = 1
	}
	return &TimerDevice{pic: pic, steps: steps}
}

func (d *TimerDevice) latch(value uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.haveLow {
		d.lowByte = value
		d.haveLow = true
		return
	}
	d.haveLow = false
	d.periodMS = uint16(value)<<8 | uint16(d.lowByte)
	d.arm()
}

func (d *TimerDevice) arm() {
	if d.stopped {
		return
	}
	d.armed = true
	if d.periodMS == 0 {
		d.countdown = d.steps
		return
	}
	period := time.Duration(d.periodMS) * time.Millisecond
	if d.timer == nil {
		d.timer = time.AfterFunc(period, d.fire)
		return
	}
	d.timer.Reset(period)
}

func (d *TimerDevice) fire() {
	d.mu.Lock()
	if !d.armed || d.stopped {
		d.mu.Unlock()
		return
	}
	d.armed = false
	d.mu.Unlock()
	d.pic.Raise(IRQTimer)
}

// cycle clocks the counter by one processor slice
func (d *TimerDevice) cycle() {
	d.mu.Lock()
	if !d.armed || d.periodMS != 0 {
		d.mu.Unlock()
		return
	}
	d.countdown--
	expired := d.countdown <= 0
	if expired {
		d.armed = false
	}
	d.mu.Unlock()
	if expired {
		d.pic.Raise(IRQTimer)
	}
}

// skip lets a halted processor fast-forward an armed cycle mode counter.
func (d *TimerDevice) skip() bool {
	d.mu.Lock()
	ok := d.armed && d.periodMS == 0 && !d.stopped
	if ok {
		d.countdown = 0
		d.armed = false
	}
	d.mu.Unlock()
	if ok {
		d.pic.Raise(IRQTimer)
	}
	return ok
}

func (d *TimerDevice) cycleMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.periodMS == 0
}

func (d *TimerDevice) stop() {
	d.mu.Lock()
	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
}
