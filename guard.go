package main

// Guard makes kernel code atomic with respect to interrupts by masking
// them. There is one processor, so a masked section is a critical section.
//
// Sections nest. Only the outermost Enter touches the interrupt flag, and
// only the matching Leave gives it back, and only if it was set before.
type Guard struct {
	cpu   *Processor
	depth int
	sti   bool
	log   *Logger
}

// NewGuard creates New Guard
func NewGuard(cpu *Processor, log *Logger) *Guard {
	return &Guard{cpu: cpu, log: log}
}

// Enter opens a critical section.
func (g *Guard) Enter() {
	if g.depth == 0 {
		g.sti = g.cpu.interruptsEnabled()
		g.cpu.cli()
	}
	g.depth++
}

// Leave closes the innermost critical section. Closing the outermost one
// re-enables interrupts if Enter found them enabled; requests that arrived
// meanwhile are served before Leave returns.
func (g *Guard) Leave() {
	if g.depth == 0 {
		kernelPanic(g.log, "guard: leave without enter")
	}
	g.depth--
	if g.depth > 0 || !g.sti {
		return
	}
	g.sti = false
	g.cpu.sti()
}

// Active reports whether a critical section is open
func (g *Guard) Active() bool {
	return g.depth > 0
}

// Depth returns the nesting depth
func (g *Guard) Depth() int {
	return g.depth
}
