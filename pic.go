package main

import "sync"

// PIC(8259)は16本の割り込み要求線を持ち、CPUへはIRQ番号+irqBaseのベクタで通知する
// xv6と同様、タイマ(IRQ0)とPS/2キーボード(IRQ1)を使う

// IRQ is an interrupt request line of the PIC
type IRQ uint8

// Vector is an interrupt vector number seen by the processor
type Vector uint8

const (
	// IRQTimer is wired to PIT channel 0
	IRQTimer IRQ = 0
	// IRQKeyboard is wired to the PS/2 keyboard controller
	IRQKeyboard IRQ = 1
	// IRQSerial is wired to COM1
	IRQSerial IRQ = 4

	numIRQ  = 16
	irqBase = Vector(0x20)
)

func (irq IRQ) vector() Vector {
	return irqBase + Vector(irq)
}

// PIC is a programmable interrupt controller.
// Devices raise request lines from their own goroutines, so every register
// access holds mu.
type PIC struct {
	mu     sync.Mutex
	IRR    uint16         // Interrupt Request Register: 未処理の要求
	ISR    uint16         // In-Service Register: ハンドラ実行中の要求, cleared by EOI
	IMR    uint16         // Interrupt Mask Register, the bit is 0 only when the IRQ is enabled.
	count  [numIRQ]uint32 // raises of each line not yet acknowledged
	wakeup chan struct{}  // kicks a halted processor
}

// NewPIC creates New PIC with every line unmasked
func NewPIC() *PIC {
	return &PIC{
		wakeup: make(chan struct{}, 1),
	}
}

// Raise asserts irq. Every raise is delivered once, even if the line is
// already requested.
func (p *PIC) Raise(irq IRQ) {
	p.mu.Lock()
	p.count[irq]++
	p.IRR |= 1 << irq
	p.mu.Unlock()
	select {
	case p.wakeup <- struct{}{}:
	default:
	}
}

// Mask disables delivery of irq
func (p *PIC) Mask(irq IRQ) {
	p.mu.Lock()
	p.IMR |= 1 << irq
	p.mu.Unlock()
}

// Unmask enables delivery of irq
func (p *PIC) Unmask(irq IRQ) {
	p.mu.Lock()
	p.IMR &^= 1 << irq
	p.mu.Unlock()
}

func (p *PIC) deliverable() uint16 {
	return p.IRR &^ p.IMR &^ p.ISR
}

func (p *PIC) pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deliverable() != 0
}

// next returns the highest priority (lowest numbered) request that is
// neither masked nor in service.
func (p *PIC) next() (IRQ, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.deliverable()
	for i := IRQ(0); i < numIRQ; i++ {
		if d&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// ack takes one request of irq into service. The IRR bit stays set while
// more raises of the line are outstanding.
func (p *PIC) ack(irq IRQ) {
	p.mu.Lock()
	if p.count[irq] > 0 {
		p.count[irq]--
	}
	if p.count[irq] == 0 {
		p.IRR &^= 1 << irq
	}
	p.ISR |= 1 << irq
	p.mu.Unlock()
}

// eoi ends the service of irq so the line can be delivered again
func (p *PIC) eoi(irq IRQ) {
	p.mu.Lock()
	p.ISR &^= 1 << irq
	p.mu.Unlock()
}

func (p *PIC) inService(irq IRQ) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ISR&(1<<irq) != 0
}
