package main

// Watch turns PIT channel 0 into the scheduler tick.
type Watch struct {
	io        *IO
	periodMS  uint16
	ticks     uint64
	organizer *Organizer
	bells     *Bellringer
	onTick    func(ticks uint64) // status publishing, tick limits
}

// NewWatch creates New Watch firing every periodMS milliseconds; 0 selects
// cycle mode.
func NewWatch(io *IO, periodMS uint16, o *Organizer, bells *Bellringer) *Watch {
	return &Watch{io: io, periodMS: periodMS, organizer: o, bells: bells}
}

// Windup programs the device for the first period
func (w *Watch) Windup() {
	w.io.out16(PortPITChannel0, w.periodMS)
}

// Trigger runs on every expiry of the timer
func (w *Watch) Trigger() {
	w.ticks++
	w.organizer.tick()
	w.bells.check()
	if w.onTick != nil {
		w.onTick(w.ticks)
	}
	w.Windup()
}

// Ticks returns the number of ticks so far
func (w *Watch) Ticks() uint64 {
	return w.ticks
}
