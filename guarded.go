package main

import "fmt"

// The Guarded* types are the only way user threads reach kernel objects.
// Each entry point runs the operation inside the guard. Leave must not be
// deferred: power off unwinds parked threads with runtime.Goexit.

// GuardedSemaphore is a Semaphore for user threads
type GuardedSemaphore struct {
	sem   *Semaphore
	guard *Guard
}

// P takes one unit, blocking while there is none
func (s *GuardedSemaphore) P() {
	s.guard.Enter()
	s.sem.p()
	s.guard.Leave()
}

// V releases one unit
func (s *GuardedSemaphore) V() {
	s.guard.Enter()
	s.sem.v()
	s.guard.Leave()
}

// Counter returns the number of free units
func (s *GuardedSemaphore) Counter() int {
	s.guard.Enter()
	n := s.sem.Counter()
	s.guard.Leave()
	return n
}

// GuardedKeyboard is the Keyboard for user threads
type GuardedKeyboard struct {
	kb    *Keyboard
	guard *Guard
}

// GetKey returns the oldest buffered key. It blocks while there is none.
func (k *GuardedKeyboard) GetKey() Key {
	k.guard.Enter()
	key := k.kb.getKey()
	k.guard.Leave()
	return key
}

// GuardedBuzzer is the Buzzer for user threads
type GuardedBuzzer struct {
	buzzer *Buzzer
	guard  *Guard
}

// Sound plays hz for ticks timer ticks and returns when the tone is over.
// A request made while another tone plays waits for it to finish.
func (b *GuardedBuzzer) Sound(hz int, ticks uint64) {
	b.guard.Enter()
	b.buzzer.sound(hz, ticks)
	b.guard.Leave()
}

// GuardedOutput is the Output for user threads
type GuardedOutput struct {
	out   *Output
	guard *Guard
}

// Write sends p in one piece; writes of different threads never interleave.
func (o *GuardedOutput) Write(p []byte) (int, error) {
	o.guard.Enter()
	o.out.write(p)
	o.guard.Leave()
	return len(p), nil
}

// Printf formats according to a format specifier and writes the result
func (o *GuardedOutput) Printf(format string, a ...interface{}) {
	o.Write([]byte(fmt.Sprintf(format, a...)))
}

// GuardedBell is the Bellringer for user threads
type GuardedBell struct {
	bells *Bellringer
	guard *Guard
}

// Sleep blocks the calling thread for ticks timer ticks. Sleep(0) yields.
func (b *GuardedBell) Sleep(ticks uint64) {
	b.guard.Enter()
	b.bells.sleep(ticks)
	b.guard.Leave()
}
