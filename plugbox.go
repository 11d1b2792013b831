package main

import "fmt"

// Gate is an interrupt handler. Trigger runs with interrupts masked and
// the request acknowledged at the PIC.
type Gate interface {
	Trigger()
}

// GateFunc adapts a function to Gate
type GateFunc func()

// Trigger calls f
func (f GateFunc) Trigger() { f() }

// Plugbox maps interrupt vectors to gates
type Plugbox struct {
	gates [256]Gate
	log   *Logger
}

// NewPlugbox creates New Plugbox with no gate assigned
func NewPlugbox(log *Logger) *Plugbox {
	return &Plugbox{log: log}
}

// Assign registers g for v. Each vector takes one gate.
func (p *Plugbox) Assign(v Vector, g Gate) error {
	if p.gates[v] != nil {
		return fmt.Errorf("%w: 0x%02x", ErrVectorTaken, uint8(v))
	}
	p.gates[v] = g
	return nil
}

// Report returns the gate for v. An interrupt nobody registered for means
// the machine is misconfigured; the kernel halts.
func (p *Plugbox) Report(v Vector) Gate {
	g := p.gates[v]
	if g == nil {
		kernelPanic(p.log, "unexpected interrupt, vector 0x%02x", uint8(v))
	}
	return g
}
