package main

import "runtime"

// Processor is the single simulated CPU.
// Only the goroutine currently holding the processor (the running thread,
// or the boot context before the first dispatch) touches its fields.
type Processor struct {
	flags    Eflags
	pic      *PIC
	cycles   uint64          // retired instruction slices
	serve    func(irq IRQ)   // interrupt gate: look up and run the handler
	epilogue func()          // runs after EOI, may switch threads
	clock    func()          // driven once per Step (PIT in cycle mode)
	idler    func() bool     // called by Halt before sleeping; true if it raised a request
	trap     func()          // called after each Step while TrapFlag is set
	stop     <-chan struct{} // closed when the machine is powered off
}

// NewProcessor creates New Processor with interrupts disabled
func NewProcessor(pic *PIC, stop <-chan struct{}) *Processor {
	return &Processor{
		pic:  pic,
		stop: stop,
	}
}

func (c *Processor) cli() {
	c.flags.unset(InterruptFlag)
}

// sti enables interrupts; requests that became pending while masked are
// taken immediately.
func (c *Processor) sti() {
	c.flags.set(InterruptFlag)
	c.deliver()
}

func (c *Processor) interruptsEnabled() bool {
	return c.flags.isEnable(InterruptFlag)
}

// Flags returns the current status word
func (c *Processor) Flags() Eflags {
	return c.flags
}

// Cycles returns the number of retired instruction slices
func (c *Processor) Cycles() uint64 {
	return c.cycles
}

// poweredOff reports whether the machine was switched off
func (c *Processor) poweredOff() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// Step retires one instruction slice of the running thread. It is an
// instruction boundary: pending interrupts are taken here. Once the machine
// is powered off the calling thread goroutine ends here.
func (c *Processor) Step() {
	if c.poweredOff() {
		runtime.Goexit()
	}
	c.cycles++
	if c.clock != nil {
		c.clock()
	}
	if c.flags.isEnable(TrapFlag) && c.trap != nil {
		c.trap()
	}
	c.deliver()
}

// deliver takes pending requests while interrupts are enabled. Nothing is
// delivered after power off.
func (c *Processor) deliver() {
	for c.interruptsEnabled() && !c.poweredOff() {
		irq, ok := c.pic.next()
		if !ok {
			return
		}
		c.interrupt(irq)
	}
}

// interrupt is the hardware entry sequence for irq.
func (c *Processor) interrupt(irq IRQ) {
	c.flags.unset(InterruptFlag)
	c.flags.set(InServiceFlag)
	c.pic.ack(irq)
	if c.serve != nil {
		c.serve(irq)
	}
	c.pic.eoi(irq)
	c.flags.unset(InServiceFlag)
	if c.epilogue != nil {
		c.epilogue()
	}
	c.flags.set(InterruptFlag)
}

// Halt enables interrupts and sleeps until a request is pending, then
// serves it. It returns false once the machine is powered off.
func (c *Processor) Halt() bool {
	c.flags.set(InterruptFlag)
	for !c.pic.pending() {
		select {
		case <-c.stop:
			return false
		default:
		}
		if c.idler != nil && c.idler() {
			continue
		}
		select {
		case <-c.pic.wakeup:
		case <-c.stop:
			return false
		}
	}
	if c.poweredOff() {
		return false
	}
	c.deliver()
	return true
}
