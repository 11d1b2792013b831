package main

// bell is a sleeping thread on the delta list; delta is the number of ticks
// beyond the preceding bell.
type bell struct {
	thread *Thread
	delta  uint64
	next   *bell
}

// Bellringer wakes threads after a number of timer ticks.
//
// input delay(ticks): 1, 1, 3, 4, 4, 9
// delta list:         1 -> 0 -> 2 -> 1 -> 0 -> 5
type Bellringer struct {
	head      *bell
	organizer *Organizer
}

// NewBellringer creates New Bellringer
func NewBellringer(o *Organizer) *Bellringer {
	return &Bellringer{organizer: o}
}

// sleep blocks the running thread for ticks timer ticks. Interrupts must be
// masked.
func (b *Bellringer) sleep(ticks uint64) {
	if ticks == 0 {
		b.organizer.yield()
		return
	}
	b.insert(&bell{thread: b.organizer.life, delta: ticks})
	b.organizer.block(b)
}

func (b *Bellringer) insert(n *bell) {
	link := &b.head
	for *link != nil && (*link).delta <= n.delta {
		n.delta -= (*link).delta
		link = &(*link).next
	}
	if *link != nil {
		(*link).delta -= n.delta
	}
	n.next = *link
	*link = n
}

// remove takes t off the list; the ticks it was ahead of its successor move
// to the successor.
func (b *Bellringer) remove(t *Thread) {
	for link := &b.head; *link != nil; link = &(*link).next {
		if n := *link; n.thread == t {
			if n.next != nil {
				n.next.delta += n.delta
			}
			*link = n.next
			return
		}
	}
}

// check runs on every timer tick in interrupt context
func (b *Bellringer) check() {
	if b.head == nil {
		return
	}
	if b.head.delta > 0 {
		b.head.delta--
	}
	for b.head != nil && b.head.delta == 0 {
		n := b.head
		b.head = n.next
		b.organizer.wakeup(n.thread)
	}
}

// Pending reports whether any thread is sleeping
func (b *Bellringer) Pending() bool {
	return b.head != nil
}

// Deadlines returns the remaining ticks of each sleeper, earliest first
func (b *Bellringer) Deadlines() []uint64 {
	var out []uint64
	var acc uint64
	for n := b.head; n != nil; n = n.next {
		acc += n.delta
		out = append(out, acc)
	}
	return out
}
