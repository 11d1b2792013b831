package main

import "fmt"

// ThreadState is the lifecycle state of a thread
type ThreadState int

const (
	ThreadNew ThreadState = iota
	ThreadReady
	ThreadRunning
	ThreadBlocked
	ThreadExited // entry returned; the thread never runs again
)

func (s ThreadState) String() string {
	switch s {
	case ThreadNew:
		return "NEW"
	case ThreadReady:
		return "READY"
	case ThreadRunning:
		return "RUNNING"
	case ThreadBlocked:
		return "BLOCKED"
	case ThreadExited:
		return "EXITED"
	}
	return fmt.Sprintf("ThreadState(%d)", int(s))
}

type stage int

const (
	stageKickoff stage = iota // first dispatch enters kickoff
	stageResume               // return from the switch that suspended it
)

// Context is the snapshot taken when a thread leaves the processor
type Context struct {
	sp       uintptr // top of the stack region
	ip       stage
	flags    Eflags
	depth    int  // guard nesting depth
	sti      bool // guard re-enables interrupts when depth reaches 0
	switches uint64
}

func (c *Context) save(cpu *Processor, g *Guard) {
	c.ip = stageResume
	c.flags = cpu.flags
	c.depth = g.depth
	c.sti = g.sti
}

func (c *Context) restore(cpu *Processor, g *Guard) {
	cpu.flags = c.flags
	g.depth = c.depth
	g.sti = c.sti
	c.switches++
}

// Thread is a kernel thread. Its body runs on a goroutine of its own that
// only executes while the thread holds the processor.
type Thread struct {
	id       int
	name     string
	priority int
	state    ThreadState
	stack    Region
	context  Context
	entry    func()
	resume   chan struct{}
	kernel   *Kernel
	waiting  waitQueue // where the thread sits while BLOCKED
	cut      bool      // readied before its wakeup came

	ticks      uint64 // timer ticks charged while running
	dispatches uint64
	traps      uint64 // single-step traps
}

// newThread builds a NEW thread whose first dispatch runs kickoff. The
// initial context holds one guard level with interrupts off, like a thread
// that was switched away from inside a critical section.
func newThread(k *Kernel, id int, name string, priority int, stack Region, entry func()) *Thread {
	t := &Thread{
		id:       id,
		name:     name,
		priority: priority,
		state:    ThreadNew,
		stack:    stack,
		entry:    entry,
		resume:   make(chan struct{}, 1),
		kernel:   k,
	}
	t.context = Context{
		sp:    stack.End(),
		ip:    stageKickoff,
		depth: 1,
		sti:   true,
	}
	if entry != nil {
		k.running.Add(1)
		go t.run()
	}
	return t
}

func (t *Thread) run() {
	defer t.kernel.running.Done()
	defer t.kernel.recoverPanic()
	if !t.park() {
		return
	}
	t.kickoff()
}

func (t *Thread) kickoff() {
	t.kernel.guard.Leave()
	t.entry()
	t.kernel.organizer.exit()
}

// park waits until the thread is dispatched again. It returns false when
// the machine is powered off instead.
func (t *Thread) park() bool {
	select {
	case <-t.resume:
		return true
	case <-t.kernel.stop:
		return false
	}
}

// ID returns the thread id
func (t *Thread) ID() int { return t.id }

// Name returns the thread name
func (t *Thread) Name() string { return t.name }

// Priority returns the ready queue key; larger runs earlier
func (t *Thread) Priority() int { return t.priority }

// State returns the lifecycle state
func (t *Thread) State() ThreadState { return t.state }

// Stack returns the stack region
func (t *Thread) Stack() Region { return t.stack }

// Scratch returns the thread's stack memory above the canary
func (t *Thread) Scratch() []byte {
	if t.stack.Size == 0 {
		return nil
	}
	return t.kernel.arena.Bytes(t.stack)[8:]
}

// ThreadStats is the accounting view of a thread
type ThreadStats struct {
	ID         int
	Name       string
	Priority   int
	State      ThreadState
	Ticks      uint64
	Dispatches uint64
	Switches   uint64
	Traps      uint64
}

// Stats returns the accounting view of t
func (t *Thread) Stats() ThreadStats {
	return ThreadStats{
		ID:         t.id,
		Name:       t.name,
		Priority:   t.priority,
		State:      t.state,
		Ticks:      t.ticks,
		Dispatches: t.dispatches,
		Switches:   t.context.switches,
		Traps:      t.traps,
	}
}

func (t *Thread) String() string {
	return fmt.Sprintf("%s(%d)", t.name, t.id)
}
