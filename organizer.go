package main

import (
	"fmt"
	"runtime"
)

// waitQueue holds blocked threads until their wakeup
type waitQueue interface {
	remove(t *Thread)
}

// Organizer keeps the ready queue and switches the processor between
// threads. Every method runs with interrupts masked, either inside a guard
// or in interrupt context.
//
// Readied and woken threads are inserted by priority, while a thread that
// yields or is preempted goes to the back. The queue is therefore not kept
// sorted; this keeps a low priority thread from starving.
type Organizer struct {
	cpu      *Processor
	guard    *Guard
	arena    *StackArena
	log      *Logger
	queue    ThreadList
	capacity int
	quantum  int     // ticks a thread may run before a tick forces a switch
	slice    int     // ticks charged to the running thread since dispatch
	resched  bool    // reschedule requested from interrupt context
	life     *Thread // thread holding the processor
	boot     *Thread // context that called Schedule
	idle     *Thread // runs when the queue is empty, never queued
	trace    []int   // id of the running thread at each tick
	traceCap int
	live     int    // readied threads that have not exited
	drained  func() // called when the last live thread exits
}

// NewOrganizer creates New Organizer. The caller becomes the boot context.
func NewOrganizer(cpu *Processor, guard *Guard, arena *StackArena, log *Logger, capacity, quantum int) *Organizer {
	if quantum <= 0 {
		quantum = 1
	}
	return &Organizer{
		cpu:      cpu,
		guard:    guard,
		arena:    arena,
		log:      log,
		capacity: capacity,
		quantum:  quantum,
		traceCap: 1 << 16,
	}
}

// Ready makes a NEW or BLOCKED thread runnable. A BLOCKED thread leaves
// the queue it waits in and its wait returns without the resource. It may be
// called before Schedule.
func (o *Organizer) Ready(t *Thread) error {
	o.guard.Enter()
	err := o.ready(t)
	o.guard.Leave()
	return err
}

func (o *Organizer) ready(t *Thread) error {
	if t.state != ThreadNew && t.state != ThreadBlocked {
		return fmt.Errorf("%w: %s is %s", ErrThreadState, t, t.state)
	}
	if o.queue.Length() >= o.capacity {
		return fmt.Errorf("%w: %d threads queued", ErrReadyQueueFull, o.capacity)
	}
	switch t.state {
	case ThreadNew:
		o.live++
	case ThreadBlocked:
		if t.waiting != nil {
			t.waiting.remove(t)
			t.waiting = nil
		}
		t.cut = true
	}
	o.insert(t)
	return nil
}

// insert places t behind every queued thread of equal or higher priority
func (o *Organizer) insert(t *Thread) {
	t.state = ThreadReady
	n := o.queue.First()
	for n != nil && n.Value().priority >= t.priority {
		n = n.Next()
	}
	o.queue.InsertBefore(n, t)
}

// requeue puts a thread that gave up the processor at the back
func (o *Organizer) requeue(t *Thread) {
	t.state = ThreadReady
	o.queue.Append(t)
}

func (o *Organizer) pickNext() *Thread {
	if t := o.queue.PopFront(); t != nil {
		return t
	}
	return o.idle
}

// Schedule is the main loop entry. It hands the processor to the first
// ready thread and returns only when the machine is powered off.
func (o *Organizer) Schedule() {
	o.guard.Enter()
	o.log.Infof("organizer: scheduling %d ready threads", o.queue.Length())
	o.switchTo(o.pickNext())
}

// Yield moves the running thread to the back of the queue and runs the
// head, if any.
func (o *Organizer) Yield() {
	o.guard.Enter()
	o.yield()
	o.guard.Leave()
}

func (o *Organizer) yield() {
	if !o.queue.Empty() {
		o.requeue(o.life)
		o.switchTo(o.pickNext())
	}
}

// RequestReschedule marks that the running thread should give up the
// processor at the end of the current interrupt.
func (o *Organizer) RequestReschedule() {
	o.resched = true
}

// epilogue runs after EOI with interrupts masked and consumes a pending
// reschedule request.
func (o *Organizer) epilogue() {
	if !o.resched {
		return
	}
	o.resched = false
	if o.queue.Empty() {
		return
	}
	if o.life != o.idle {
		o.requeue(o.life)
	}
	o.switchTo(o.pickNext())
}

// tick charges one timer tick to the running thread
func (o *Organizer) tick() {
	t := o.life
	t.ticks++
	if len(o.trace) < o.traceCap {
		o.trace = append(o.trace, t.id)
	}
	o.slice++
	if o.slice >= o.quantum || (t == o.idle && !o.queue.Empty()) {
		o.RequestReschedule()
	}
}

// block suspends the running thread, which the caller has already put in q,
// until wakeup. It returns false if the thread was readied before its
// wakeup came.
func (o *Organizer) block(q waitQueue) bool {
	t := o.life
	t.state = ThreadBlocked
	t.waiting = q
	o.log.Debugf("organizer: %s blocked", t)
	o.switchTo(o.pickNext())
	cut := t.cut
	t.cut = false
	return !cut
}

// wakeup makes a blocked thread ready again. The idle context is left at
// the end of the current interrupt.
func (o *Organizer) wakeup(t *Thread) {
	if t.state != ThreadBlocked {
		kernelPanic(o.log, "organizer: wakeup of %s in state %s", t, t.state)
	}
	t.waiting = nil
	o.insert(t)
	o.log.Debugf("organizer: %s woken", t)
	if o.life == o.idle {
		o.RequestReschedule()
	}
}

// exit takes the running thread out of scheduling for good
func (o *Organizer) exit() {
	o.guard.Enter()
	t := o.life
	t.state = ThreadExited
	o.live--
	o.log.Debugf("organizer: %s exited", t)
	if !o.arena.intact(t.stack) {
		kernelPanic(o.log, "organizer: stack overflow in %s %s", t, t.stack)
	}
	o.arena.Release(t.stack)
	if o.live == 0 && o.drained != nil {
		o.drained()
	}
	o.switchTo(o.pickNext())
}

// switchTo saves the running context and restores next. Called with
// interrupts masked only. The calling goroutine parks until its thread is
// dispatched again.
func (o *Organizer) switchTo(next *Thread) {
	prev := o.life
	if next == prev {
		prev.state = ThreadRunning
		return
	}
	prev.context.save(o.cpu, o.guard)
	if !o.arena.intact(prev.stack) {
		kernelPanic(o.log, "organizer: stack overflow in %s %s", prev, prev.stack)
	}
	if prev == o.idle || prev.state == ThreadRunning {
		prev.state = ThreadReady
	}
	exiting := prev.state == ThreadExited

	next.state = ThreadRunning
	next.dispatches++
	o.life = next
	o.slice = 0
	next.context.restore(o.cpu, o.guard)
	o.log.Debugf("organizer: switch %s -> %s", prev, next)
	next.resume <- struct{}{}

	if exiting {
		runtime.Goexit()
	}
	if !prev.park() {
		if prev == o.boot {
			return
		}
		runtime.Goexit()
	}
}

// Active returns the thread holding the processor
func (o *Organizer) Active() *Thread {
	return o.life
}

// Queued returns the ready threads in queue order
func (o *Organizer) Queued() []*Thread {
	var out []*Thread
	o.queue.Traverse(func(t *Thread) error {
		out = append(out, t)
		return nil
	})
	return out
}

// Trace returns the id of the running thread at each tick so far
func (o *Organizer) Trace() []int {
	return append([]int(nil), o.trace...)
}
