package main

import "sync"

// scan code set 1, make codes 0x00-0x39
const (
	scanNormal  = "\x00\x1b1234567890-=\b\tqwertyuiop[]\n\x00asdfghjkl;'`\x00\\zxcvbnm,./\x00*\x00 "
	scanShifted = "\x00\x1b!@#$%^&*()_+\b\tQWERTYUIOP{}\n\x00ASDFGHJKL:\"~\x00|ZXCVBNM<>?\x00*\x00 "
)

const (
	scanCtrl     = 0x1d
	scanLShift   = 0x2a
	scanRShift   = 0x36
	scanAlt      = 0x38
	scanCapsLock = 0x3a
	scanExtended = 0xe0
	scanBreak    = 0x80
)

const kbcFIFOSize = 16

// KeyboardController is the PS/2 controller. The host side calls Press; the
// kernel drains the output buffer through PortKbdStatus and PortKbdData.
type KeyboardController struct {
	mu   sync.Mutex
	fifo []uint8
	pic  *PIC
	lost int
}

// NewKeyboardController creates New KeyboardController
func NewKeyboardController(pic *PIC) *KeyboardController {
	return &KeyboardController{pic: pic}
}

// Press puts a scancode in the output buffer and raises IRQKeyboard. It
// returns false if the buffer is full and the code was lost.
func (kc *KeyboardController) Press(code uint8) bool {
	kc.mu.Lock()
	if len(kc.fifo) >= kbcFIFOSize {
		kc.lost++
		kc.mu.Unlock()
		return false
	}
	kc.fifo = append(kc.fifo, code)
	kc.mu.Unlock()
	kc.pic.Raise(IRQKeyboard)
	return true
}

// Type presses and releases the keys producing s, with shift where needed.
func (kc *KeyboardController) Type(s string) {
	for _, r := range s {
		for _, code := range scancodesFor(r) {
			kc.Press(code)
		}
	}
}

func (kc *KeyboardController) status() uint8 {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	if len(kc.fifo) > 0 {
		return 1
	}
	return 0
}

func (kc *KeyboardController) data() uint8 {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	if len(kc.fifo) == 0 {
		return 0
	}
	code := kc.fifo[0]
	kc.fifo = kc.fifo[1:]
	return code
}

// scancodesFor returns the make/break sequence typing r
func scancodesFor(r rune) []uint8 {
	if r == '\r' {
		r = '\n'
	}
	if r <= 0 || r > 0x7f {
		return nil
	}
	if r < 0x20 && r != '\b' && r != '\t' && r != '\n' && r != 0x1b {
		// ctrl+letter
		codes := scancodesFor(r + 0x60)
		if codes == nil {
			return nil
		}
		return append(append([]uint8{scanCtrl}, codes...), scanCtrl|scanBreak)
	}
	for i := 1; i < len(scanNormal); i++ {
		if rune(scanNormal[i]) == r {
			return []uint8{uint8(i), uint8(i) | scanBreak}
		}
	}
	for i := 1; i < len(scanShifted); i++ {
		if rune(scanShifted[i]) == r {
			return []uint8{scanLShift, uint8(i), uint8(i) | scanBreak, scanLShift | scanBreak}
		}
	}
	return nil
}
