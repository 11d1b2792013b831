package main

import (
	"io"
)

// I/O ports
const (
	PortPITChannel0 = 0x0040 // PIT channel 0: tick period in ms, low byte then high byte
	PortPITChannel2 = 0x0042 // PIT channel 2: speaker divisor, low byte then high byte
	PortPITCommand  = 0x0043
	PortKbdData     = 0x0060
	PortSpeakerGate = 0x0061 // bit 0: PIT channel 2 gate, bit 1: speaker data
	PortKbdStatus   = 0x0064 // bit 0: output buffer full
	PortCOM1        = 0x03f8 // Transmitter Holding Register
)

// IO has I/O port and emulate I/O device
type IO struct {
	memory   [65536]uint8 // I/O port
	writer   io.Writer
	keyboard *KeyboardController
	speaker  *Speaker
	timer    *TimerDevice
}

// NewIO creates New IO
func NewIO(writer io.Writer, keyboard *KeyboardController, speaker *Speaker, timer *TimerDevice) *IO {
	return &IO{
		writer:   writer,
		keyboard: keyboard,
		speaker:  speaker,
		timer:    timer,
	}
}

func (io *IO) in8(address uint16) uint8 {
	switch address {
	case PortKbdStatus: // Keyboard Controller Read Status
		io.memory[address] = io.keyboard.status()
	case PortKbdData: // Keyboard Output Buffer
		io.memory[address] = io.keyboard.data()
	case PortSpeakerGate:
		io.memory[address] = io.speaker.gate()
	}
	return io.memory[address]
}

func (io *IO) out8(address uint16, value uint8) {
	io.memory[address] = value
	switch address {
	case PortPITChannel0:
		io.timer.latch(value)
	case PortPITCommand:
		io.speaker.command(value)
	case PortPITChannel2:
		io.speaker.latch(value)
	case PortSpeakerGate:
		io.speaker.setGate(value)
	case PortCOM1: // Transmitter Holding Register
		if io.writer != nil {
			io.writer.Write([]byte{value})
		}
	default:
		return
	}
}

func (io *IO) out16(address uint16, value uint16) {
	io.out8(address, uint8(value&0xFF))
	io.out8(address, uint8(value>>8))
}
