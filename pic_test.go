package main

import "testing"

func TestPICPriority(t *testing.T) {
	p := NewPIC()
	p.Raise(IRQSerial)
	p.Raise(IRQKeyboard)
	p.Raise(IRQTimer)

	want := []IRQ{IRQTimer, IRQKeyboard, IRQSerial}
	for _, w := range want {
		irq, ok := p.next()
		if !ok || irq != w {
			t.Fatalf("next() = %d, %v; want %d", irq, ok, w)
		}
		p.ack(irq)
		if !p.inService(irq) {
			t.Fatalf("irq %d not in service after ack", irq)
		}
	}
	if _, ok := p.next(); ok {
		t.Fatalf("next() reported a request while every line is in service")
	}
	for _, w := range want {
		p.eoi(w)
	}
	if p.pending() {
		t.Fatalf("pending after EOI: IRR=%04x ISR=%04x", p.IRR, p.ISR)
	}
}

func TestPICMaskAndInService(t *testing.T) {
	p := NewPIC()
	p.Mask(IRQTimer)
	p.Raise(IRQTimer)
	if p.pending() {
		t.Fatalf("masked request is pending")
	}
	p.Unmask(IRQTimer)
	irq, ok := p.next()
	if !ok || irq != IRQTimer {
		t.Fatalf("next() = %d, %v after unmask", irq, ok)
	}

	// a line in service is not delivered again before EOI
	p.ack(IRQTimer)
	p.Raise(IRQTimer)
	if p.pending() {
		t.Fatalf("request delivered while in service")
	}
	p.eoi(IRQTimer)
	if !p.pending() {
		t.Fatalf("request lost across EOI")
	}
}

func TestPICCountsRaises(t *testing.T) {
	p := NewPIC()
	p.Raise(IRQKeyboard)
	p.Raise(IRQKeyboard)
	for i := 0; i < 2; i++ {
		irq, ok := p.next()
		if !ok || irq != IRQKeyboard {
			t.Fatalf("request %d: next() = %d, %v", i, irq, ok)
		}
		p.ack(irq)
		p.eoi(irq)
	}
	if p.pending() {
		t.Fatalf("two raises delivered three times: IRR=%04x", p.IRR)
	}
	if v := IRQKeyboard.vector(); v != 0x21 {
		t.Errorf("keyboard vector = 0x%02x, want 0x21", uint8(v))
	}
}
