package main

import (
	"errors"
	"io/ioutil"
	"testing"
)

func TestPlugboxAssign(t *testing.T) {
	p := NewPlugbox(NewLogger(ioutil.Discard, Nothing))
	if err := p.Assign(VectorTimer, GateFunc(func() {})); err != nil {
		t.Fatal(err.Error())
	}
	err := p.Assign(VectorTimer, GateFunc(func() {}))
	if !errors.Is(err, ErrVectorTaken) {
		t.Fatalf("second Assign returned %v, want ErrVectorTaken", err)
	}
}

func TestPlugboxUnexpectedInterrupt(t *testing.T) {
	pic, cpu, _ := newTestProcessor()
	p := NewPlugbox(NewLogger(ioutil.Discard, Nothing))
	cpu.serve = func(irq IRQ) { p.Report(irq.vector()).Trigger() }

	defer func() {
		kp, ok := recover().(*KernelPanic)
		if !ok {
			t.Fatalf("unassigned vector did not raise a kernel panic")
		}
		if kp.Reason != "unexpected interrupt, vector 0x24" {
			t.Errorf("reason = %q", kp.Reason)
		}
	}()
	pic.Raise(IRQSerial)
	cpu.sti()
}

func TestDispatchOrder(t *testing.T) {
	pic, cpu, _ := newTestProcessor()
	p := NewPlugbox(NewLogger(ioutil.Discard, Nothing))
	cpu.serve = func(irq IRQ) { p.Report(irq.vector()).Trigger() }

	var got []IRQ
	active := map[IRQ]bool{}
	gate := func(irq IRQ) Gate {
		return GateFunc(func() {
			if active[irq] {
				t.Fatalf("gate of irq %d re-entered", irq)
			}
			if !cpu.flags.isEnable(InServiceFlag) {
				t.Errorf("gate ran outside interrupt context")
			}
			active[irq] = true
			got = append(got, irq)
			active[irq] = false
		})
	}
	p.Assign(VectorTimer, gate(IRQTimer))
	p.Assign(VectorKeyboard, gate(IRQKeyboard))
	cpu.sti()

	const n = 50
	var want []IRQ
	for i := 0; i < n; i++ {
		irq := IRQ(i % 2)
		want = append(want, irq)
		pic.Raise(irq)
		cpu.Step()
	}
	if len(got) != n {
		t.Fatalf("%d triggers for %d interrupts", len(got), n)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trigger %d was irq %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDispatchNoReentry(t *testing.T) {
	pic, cpu, _ := newTestProcessor()
	p := NewPlugbox(NewLogger(ioutil.Discard, Nothing))
	cpu.serve = func(irq IRQ) { p.Report(irq.vector()).Trigger() }

	depth, calls := 0, 0
	p.Assign(VectorKeyboard, GateFunc(func() {
		depth++
		calls++
		if depth > 1 {
			t.Fatalf("gate re-entered")
		}
		if calls == 1 {
			// the same line fires again while the gate runs
			pic.Raise(IRQKeyboard)
			cpu.sti()
		}
		depth--
	}))
	pic.Raise(IRQKeyboard)
	cpu.sti()
	if calls != 2 {
		t.Fatalf("gate ran %d times, want 2", calls)
	}
}

// Requests raised while interrupts are masked are all delivered on leave.
func TestDispatchCountUnderGuard(t *testing.T) {
	pic, cpu, g := newTestProcessor()
	p := NewPlugbox(NewLogger(ioutil.Discard, Nothing))
	cpu.serve = func(irq IRQ) { p.Report(irq.vector()).Trigger() }
	calls := 0
	p.Assign(VectorKeyboard, GateFunc(func() { calls++ }))
	cpu.sti()

	const n = 5
	g.Enter()
	for i := 0; i < n; i++ {
		pic.Raise(IRQKeyboard)
	}
	cpu.Step()
	if calls != 0 {
		t.Fatalf("gate ran %d times inside the guard", calls)
	}
	g.Leave()
	if calls != n {
		t.Fatalf("raised %d, gate ran %d times", n, calls)
	}
}
