package main

// Buzzer plays tones on the PC speaker. One tone sounds at a time: a
// request waits on busy until the previous one has finished, in the order
// the requests were made.
type Buzzer struct {
	io    *IO
	bells *Bellringer
	busy  *Semaphore
	log   *Logger
	hz    int
}

// NewBuzzer creates New Buzzer
func NewBuzzer(io *IO, o *Organizer, bells *Bellringer, log *Logger) *Buzzer {
	return &Buzzer{io: io, bells: bells, busy: NewSemaphore(o, 1), log: log}
}

// sound plays hz for ticks timer ticks, blocking the running thread until
// the tone is over. Interrupts must be masked.
func (b *Buzzer) sound(hz int, ticks uint64) {
	if hz <= 0 || ticks == 0 {
		return
	}
	b.busy.p()
	b.on(hz)
	b.bells.sleep(ticks)
	b.off()
	b.busy.v()
}

func (b *Buzzer) on(hz int) {
	divisor := PITFrequency / hz
	if divisor > 0xffff {
		divisor = 0xffff
	}
	if divisor == 0 {
		divisor = 1
	}
	b.hz = hz
	b.io.out8(PortPITCommand, 0xb6) // channel 2, lobyte/hibyte, square wave
	b.io.out16(PortPITChannel2, uint16(divisor))
	b.io.out8(PortSpeakerGate, b.io.in8(PortSpeakerGate)|3)
	b.log.Debugf("buzzer: on %d Hz", hz)
}

func (b *Buzzer) off() {
	b.io.out8(PortSpeakerGate, b.io.in8(PortSpeakerGate)&^3)
	b.log.Debugf("buzzer: off %d Hz", b.hz)
	b.hz = 0
}

// Waiting returns the number of threads queued for the speaker
func (b *Buzzer) Waiting() int {
	return b.busy.Waiting()
}
