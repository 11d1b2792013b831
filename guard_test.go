package main

import (
	"io/ioutil"
	"math/rand"
	"testing"
)

func newTestProcessor() (*PIC, *Processor, *Guard) {
	pic := NewPIC()
	cpu := NewProcessor(pic, make(chan struct{}))
	return pic, cpu, NewGuard(cpu, NewLogger(ioutil.Discard, Nothing))
}

func TestGuardNesting(t *testing.T) {
	_, cpu, g := newTestProcessor()
	cpu.sti()

	g.Enter()
	g.Enter()
	if cpu.interruptsEnabled() {
		t.Fatalf("interrupts enabled at depth %d", g.Depth())
	}
	g.Leave()
	if cpu.interruptsEnabled() || !g.Active() {
		t.Fatalf("inner leave gave interrupts back")
	}
	g.Leave()
	if !cpu.interruptsEnabled() || g.Active() {
		t.Fatalf("outermost leave did not restore interrupts")
	}
}

func TestGuardKeepsDisabled(t *testing.T) {
	_, cpu, g := newTestProcessor()
	g.Enter()
	g.Leave()
	if cpu.interruptsEnabled() {
		t.Fatalf("leave enabled interrupts that were off at enter")
	}
}

func TestGuardBalance(t *testing.T) {
	_, cpu, g := newTestProcessor()
	cpu.sti()
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		if g.Depth() > 0 && r.Intn(2) == 0 {
			g.Leave()
		} else {
			g.Enter()
		}
		if g.Depth() > 0 && cpu.interruptsEnabled() {
			t.Fatalf("step %d: interrupts enabled at depth %d", i, g.Depth())
		}
		if g.Depth() == 0 && !cpu.interruptsEnabled() {
			t.Fatalf("step %d: interrupts disabled at depth 0", i)
		}
	}
}

func TestGuardDeliversOnLeave(t *testing.T) {
	pic, cpu, g := newTestProcessor()
	served := 0
	cpu.serve = func(irq IRQ) { served++ }
	cpu.sti()

	g.Enter()
	pic.Raise(IRQKeyboard)
	cpu.Step()
	if served != 0 {
		t.Fatalf("interrupt taken inside the guard")
	}
	g.Leave()
	if served != 1 {
		t.Fatalf("served = %d after leave, want 1", served)
	}
}

func TestGuardUnbalancedLeave(t *testing.T) {
	_, _, g := newTestProcessor()
	defer func() {
		if _, ok := recover().(*KernelPanic); !ok {
			t.Fatalf("unbalanced leave did not raise a kernel panic")
		}
	}()
	g.Leave()
}
