package main

import "sync"

// PITFrequency is the input clock of the 8253/8254 in Hz
const PITFrequency = 1193182

// Beep is one activation of the speaker, stamped with timer ticks
type Beep struct {
	Hz    int
	Start uint64
	Stop  uint64
}

// Speaker is the PC speaker behind PIT channel 2 and port 0x61.
type Speaker struct {
	mu      sync.Mutex
	mode    uint8
	lowByte uint8
	haveLow bool
	divisor uint16
	gateReg uint8
	beeps   []Beep
	now     func() uint64 // tick source used to stamp beeps
}

// NewSpeaker creates New Speaker
func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) command(value uint8) {
	s.mu.Lock()
	s.mode = value
	s.haveLow = false
	s.mu.Unlock()
}

func (s *Speaker) latch(value uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveLow {
		s.lowByte = value
		s.haveLow = true
		return
	}
	s.haveLow = false
	s.divisor = uint16(value)<<8 | uint16(s.lowByte)
}

func (s *Speaker) gate() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateReg
}

func (s *Speaker) setGate(value uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasOn := s.gateReg&3 == 3
	isOn := value&3 == 3
	s.gateReg = value
	var now uint64
	if s.now != nil {
		now = s.now()
	}
	switch {
	case isOn && !wasOn:
		hz := 0
		if s.divisor != 0 {
			hz = PITFrequency / int(s.divisor)
		}
		s.beeps = append(s.beeps, Beep{Hz: hz, Start: now})
	case wasOn && !isOn:
		s.beeps[len(s.beeps)-1].Stop = now
	}
}

// Playing returns the current tone, if any
func (s *Speaker) Playing() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gateReg&3 != 3 || len(s.beeps) == 0 {
		return 0, false
	}
	return s.beeps[len(s.beeps)-1].Hz, true
}

// Beeps returns a copy of every activation so far
func (s *Speaker) Beeps() []Beep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Beep(nil), s.beeps...)
}
