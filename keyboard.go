package main

// Key is a decoded keystroke
type Key struct {
	ascii    byte
	scancode uint8
	shift    bool
	ctrl     bool
	alt      bool
}

// Ascii returns the character of k, already adjusted for shift, caps lock
// and ctrl.
func (k Key) Ascii() byte { return k.ascii }

// Scancode returns the make code of k
func (k Key) Scancode() uint8 { return k.scancode }

// Shift reports whether a shift key was held
func (k Key) Shift() bool { return k.shift }

// Ctrl reports whether ctrl was held
func (k Key) Ctrl() bool { return k.ctrl }

// Alt reports whether alt was held
func (k Key) Alt() bool { return k.alt }

// Keyboard is the kernel side of the keyboard: the interrupt gate that
// decodes scancodes into a bounded buffer, and the threads waiting on it.
type Keyboard struct {
	io        *IO
	organizer *Organizer
	log       *Logger

	keys []Key // ring buffer
	head int
	n    int
	room Waitingroom

	shift    bool
	ctrl     bool
	alt      bool
	capsLock bool
	extended bool
	dropped  int
}

// NewKeyboard creates New Keyboard buffering up to size keys
func NewKeyboard(io *IO, o *Organizer, log *Logger, size int) *Keyboard {
	if size <= 0 {
		size = 1
	}
	return &Keyboard{io: io, organizer: o, log: log, keys: make([]Key, size)}
}

// Trigger drains the controller's output buffer
func (kb *Keyboard) Trigger() {
	for kb.io.in8(PortKbdStatus)&1 != 0 {
		code := kb.io.in8(PortKbdData)
		key, ok := kb.decode(code)
		if !ok {
			continue
		}
		if kb.n == len(kb.keys) {
			kb.dropped++
			kb.log.Warnf("keyboard: buffer full, dropped %q", key.ascii)
			continue
		}
		kb.keys[(kb.head+kb.n)%len(kb.keys)] = key
		kb.n++
		if t := kb.room.dequeue(); t != nil {
			kb.organizer.wakeup(t)
		}
	}
}

func (kb *Keyboard) decode(code uint8) (Key, bool) {
	if code == scanExtended {
		kb.extended = true
		return Key{}, false
	}
	if kb.extended {
		// cursor and keypad keys carry no character
		kb.extended = false
		return Key{}, false
	}
	release := code&scanBreak != 0
	key := code &^ scanBreak
	switch key {
	case scanLShift, scanRShift:
		kb.shift = !release
		return Key{}, false
	case scanCtrl:
		kb.ctrl = !release
		return Key{}, false
	case scanAlt:
		kb.alt = !release
		return Key{}, false
	case scanCapsLock:
		if !release {
			kb.capsLock = !kb.capsLock
		}
		return Key{}, false
	}
	if release || int(key) >= len(scanNormal) {
		return Key{}, false
	}
	c := scanNormal[key]
	if kb.shift {
		c = scanShifted[key]
	}
	if kb.capsLock && isLetter(c) {
		c ^= 0x20
	}
	if kb.ctrl && isLetter(c) {
		c &= 0x1f
	}
	if c == 0 {
		return Key{}, false
	}
	return Key{ascii: c, scancode: key, shift: kb.shift, ctrl: kb.ctrl, alt: kb.alt}, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// getKey returns the oldest buffered key, blocking while there is none.
// Interrupts must be masked.
func (kb *Keyboard) getKey() Key {
	for kb.n == 0 {
		kb.room.enqueue(kb.organizer.life)
		kb.organizer.block(&kb.room)
	}
	key := kb.keys[kb.head]
	kb.head = (kb.head + 1) % len(kb.keys)
	kb.n--
	return key
}

// Buffered returns the number of keys waiting to be read
func (kb *Keyboard) Buffered() int {
	return kb.n
}

// Dropped returns the number of keys lost to a full buffer
func (kb *Keyboard) Dropped() int {
	return kb.dropped
}
