package main

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// Vectors of the wired devices
const (
	VectorTimer    = irqBase + Vector(IRQTimer)
	VectorKeyboard = irqBase + Vector(IRQKeyboard)
)

// Kernel owns the machine and exactly one of each kernel object.
//
// Fields below the machine are written only by the goroutine holding the
// processor. The host side talks to the kernel through the keyboard
// controller, PowerOff and Status.
type Kernel struct {
	cfg      *Config
	log      *Logger
	stop     chan struct{}
	stopOnce sync.Once
	running  sync.WaitGroup // thread goroutines still alive
	panicked *KernelPanic

	// machine
	pic     *PIC
	cpu     *Processor
	io      *IO
	kbc     *KeyboardController
	speaker *Speaker
	timer   *TimerDevice

	guard     *Guard
	plugbox   *Plugbox
	arena     *StackArena
	organizer *Organizer
	watch     *Watch
	bells     *Bellringer
	keyboard  *Keyboard
	buzzer    *Buzzer
	output    *Output

	threads []*Thread
	nextID  int
	status  atomic.Value // Status
}

// NewKernel builds the machine and the kernel described by cfg. Text
// written by threads goes to out.
func NewKernel(cfg *Config, out io.Writer, log *Logger) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k := &Kernel{
		cfg:    cfg,
		log:    log,
		stop:   make(chan struct{}),
		nextID: 1,
	}

	k.pic = NewPIC()
	k.cpu = NewProcessor(k.pic, k.stop)
	k.timer = NewTimerDevice(k.pic, cfg.TickSteps)
	k.kbc = NewKeyboardController(k.pic)
	k.speaker = NewSpeaker()
	k.io = NewIO(out, k.kbc, k.speaker, k.timer)

	k.guard = NewGuard(k.cpu, log)
	k.plugbox = NewPlugbox(log)
	k.arena = NewStackArena(cfg.StackSlab, cfg.StackSlabs, log)
	k.organizer = NewOrganizer(k.cpu, k.guard, k.arena, log, cfg.MaxThreads, cfg.TicksPerQuantum)
	k.bells = NewBellringer(k.organizer)
	k.watch = NewWatch(k.io, uint16(cfg.TickMS), k.organizer, k.bells)
	k.keyboard = NewKeyboard(k.io, k.organizer, log, cfg.KeyboardBuffer)
	k.buzzer = NewBuzzer(k.io, k.organizer, k.bells, log)
	k.output = NewOutput(k.io)

	k.cpu.serve = func(irq IRQ) {
		k.plugbox.Report(irq.vector()).Trigger()
	}
	k.cpu.epilogue = k.organizer.epilogue
	k.cpu.clock = k.timer.cycle
	k.cpu.idler = func() bool {
		return k.bells.Pending() && k.timer.skip()
	}
	k.cpu.trap = func() {
		t := k.organizer.Active()
		t.traps++
		k.log.Debugf("trap: %s cycle %d", t, k.cpu.Cycles())
	}
	k.speaker.now = k.watch.Ticks
	k.watch.onTick = k.onTick
	k.organizer.drained = func() {
		k.log.Infof("kernel: all threads exited")
		k.Halt()
	}

	if err := k.plugbox.Assign(VectorTimer, k.watch); err != nil {
		return nil, err
	}
	if err := k.plugbox.Assign(VectorKeyboard, k.keyboard); err != nil {
		return nil, err
	}

	boot := newThread(k, -1, "boot", 0, Region{}, nil)
	boot.state = ThreadRunning
	k.organizer.boot = boot
	k.organizer.life = boot

	stack, err := k.arena.Allocate(0, 1)
	if err != nil {
		return nil, err
	}
	idle := newThread(k, 0, "idle", 0, stack, k.idle)
	k.organizer.idle = idle
	k.threads = append(k.threads, idle)
	k.publish()
	return k, nil
}

func (k *Kernel) idle() {
	for k.cpu.Halt() {
	}
	runtime.Goexit()
}

func (k *Kernel) onTick(ticks uint64) {
	k.publish()
	if k.cfg.HaltAfter > 0 && ticks >= k.cfg.HaltAfter {
		k.log.Infof("kernel: tick limit %d reached", k.cfg.HaltAfter)
		k.Halt()
	}
}

// Create makes a NEW thread with a stack of slabs slabs. It runs once it is
// readied.
func (k *Kernel) Create(name string, priority, slabs int, entry func()) (*Thread, error) {
	k.guard.Enter()
	id := k.nextID
	stack, err := k.arena.Allocate(id, slabs)
	if err != nil {
		k.guard.Leave()
		return nil, err
	}
	k.nextID++
	t := newThread(k, id, name, priority, stack, entry)
	k.threads = append(k.threads, t)
	k.guard.Leave()
	k.log.Debugf("kernel: created %s stack %s", t, stack)
	return t, nil
}

// CreateAt makes a NEW thread on a caller-chosen stack region. A region the
// arena cannot hand out is a kernel panic.
func (k *Kernel) CreateAt(name string, priority int, stack Region, entry func()) *Thread {
	k.guard.Enter()
	id := k.nextID
	k.arena.Claim(id, stack)
	k.nextID++
	t := newThread(k, id, name, priority, stack, entry)
	k.threads = append(k.threads, t)
	k.guard.Leave()
	return t
}

// Spawn creates a thread and readies it
func (k *Kernel) Spawn(name string, priority, slabs int, entry func()) (*Thread, error) {
	t, err := k.Create(name, priority, slabs, entry)
	if err != nil {
		return nil, err
	}
	if err := k.Ready(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Ready makes t runnable
func (k *Kernel) Ready(t *Thread) error {
	return k.organizer.Ready(t)
}

// Run starts the timer and the scheduler on the calling goroutine, which
// becomes the boot context. It returns when the machine is powered off and
// every thread goroutine has ended.
func (k *Kernel) Run() error {
	k.log.Infof("kernel: tick %d ms, quantum %d ticks, %d threads",
		k.cfg.TickMS, k.cfg.TicksPerQuantum, len(k.threads)-1)
	if k.timer.cycleMode() {
		k.log.Infof("kernel: timer clocked every %d slices", k.cfg.TickSteps)
	}
	k.watch.Windup()
	k.organizer.Schedule()
	k.running.Wait()
	k.log.Infof("kernel: halted after %d ticks", k.watch.Ticks())
	if k.panicked != nil {
		return k.panicked
	}
	return nil
}

// PowerOff stops the machine. Parked threads never run again and the
// running one ends at its next Step. It may be called from any goroutine,
// any number of times.
func (k *Kernel) PowerOff() {
	k.stopOnce.Do(func() {
		k.timer.stop()
		close(k.stop)
	})
}

// Halt powers the machine off from a kernel thread or interrupt handler.
// It does not return.
func (k *Kernel) Halt() {
	k.PowerOff()
	runtime.Goexit()
}

// recoverPanic turns a kernel panic on a thread goroutine into a powered
// off machine whose Run reports it.
func (k *Kernel) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	p, ok := r.(*KernelPanic)
	if !ok {
		panic(r)
	}
	k.panicked = p
	k.PowerOff()
}

// Step retires one slice of work of the running thread
func (k *Kernel) Step() {
	k.cpu.Step()
}

// SingleStep turns tracing of every Step of the running thread on or off.
// The trap flag is part of the thread's saved context, so other threads
// are not traced.
func (k *Kernel) SingleStep(on bool) {
	k.guard.Enter()
	k.cpu.flags.setVal(TrapFlag, on)
	k.guard.Leave()
}

// Yield gives the processor to the next ready thread
func (k *Kernel) Yield() {
	k.organizer.Yield()
}

// Current returns the running thread
func (k *Kernel) Current() *Thread {
	return k.organizer.Active()
}

// Semaphore creates a semaphore with n free units
func (k *Kernel) Semaphore(n int) *GuardedSemaphore {
	return &GuardedSemaphore{sem: NewSemaphore(k.organizer, n), guard: k.guard}
}

// Keyboard returns the keyboard for user threads
func (k *Kernel) Keyboard() *GuardedKeyboard {
	return &GuardedKeyboard{kb: k.keyboard, guard: k.guard}
}

// Buzzer returns the buzzer for user threads
func (k *Kernel) Buzzer() *GuardedBuzzer {
	return &GuardedBuzzer{buzzer: k.buzzer, guard: k.guard}
}

// Output returns the text sink for user threads
func (k *Kernel) Output() *GuardedOutput {
	return &GuardedOutput{out: k.output, guard: k.guard}
}

// Bell returns the sleep service for user threads
func (k *Kernel) Bell() *GuardedBell {
	return &GuardedBell{bells: k.bells, guard: k.guard}
}

// KeyboardController returns the host side of the keyboard
func (k *Kernel) KeyboardController() *KeyboardController {
	return k.kbc
}

// Speaker returns the speaker device
func (k *Kernel) Speaker() *Speaker {
	return k.speaker
}

// Ticks returns the number of timer ticks so far
func (k *Kernel) Ticks() uint64 {
	return k.watch.Ticks()
}

// Threads returns every thread created so far, idle first
func (k *Kernel) Threads() []*Thread {
	return append([]*Thread(nil), k.threads...)
}

// Trace returns the id of the running thread at each tick
func (k *Kernel) Trace() []int {
	return k.organizer.Trace()
}

// Stats returns the accounting of every thread. Call it from a kernel
// thread or after Run returned; the host side reads Status instead.
func (k *Kernel) Stats() []ThreadStats {
	out := make([]ThreadStats, 0, len(k.threads))
	for _, t := range k.threads {
		out = append(out, t.Stats())
	}
	return out
}

// Status is a snapshot of the kernel published on every timer tick
type Status struct {
	Ticks    uint64
	Running  string
	Queued   int
	Sleepers int
	Keys     int
	Tone     int
	Threads  []ThreadStats
}

func (k *Kernel) publish() {
	s := Status{
		Ticks:    k.watch.Ticks(),
		Running:  k.organizer.Active().String(),
		Queued:   k.organizer.queue.Length(),
		Sleepers: len(k.bells.Deadlines()),
		Keys:     k.keyboard.Buffered(),
		Threads:  k.Stats(),
	}
	if hz, ok := k.speaker.Playing(); ok {
		s.Tone = hz
	}
	k.status.Store(s)
}

// Status returns the latest snapshot. Safe from any goroutine.
func (k *Kernel) Status() Status {
	s, _ := k.status.Load().(Status)
	return s
}

// Dump prints the machine and scheduler state
func (k *Kernel) Dump(w io.Writer) {
	k.cpu.flags.dump(w)
	color.New(color.FgYellow).Fprintf(w, "guard depth=%d  ticks=%d  cycles=%d\n",
		k.guard.Depth(), k.watch.Ticks(), k.cpu.Cycles())
	color.New(color.FgGreen).Fprintf(w, "running: %s\n", k.organizer.Active())
	fmt.Fprintf(w, "ready:")
	for _, t := range k.organizer.Queued() {
		fmt.Fprintf(w, " %s", t)
	}
	fmt.Fprintln(w)
	for _, s := range k.Stats() {
		fmt.Fprintf(w, "%4d %-12s prio=%-3d %-8s ticks=%-6d dispatches=%d\n",
			s.ID, s.Name, s.Priority, s.State, s.Ticks, s.Dispatches)
	}
}
