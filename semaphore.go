package main

// Waitingroom is a FIFO of threads blocked on one condition
type Waitingroom struct {
	list ThreadList
}

func (w *Waitingroom) enqueue(t *Thread) {
	w.list.Append(t)
}

func (w *Waitingroom) remove(t *Thread) {
	for n := w.list.First(); n != nil; n = n.Next() {
		if n.Value() == t {
			w.list.Remove(n)
			return
		}
	}
}

// dequeue removes the thread that has waited longest, nil if none
func (w *Waitingroom) dequeue() *Thread {
	return w.list.PopFront()
}

// Len returns the number of waiting threads
func (w *Waitingroom) Len() int {
	return w.list.Length()
}

// Semaphore is a counting semaphore with FIFO wakeup. Its operations assume
// interrupts are masked; user threads reach it through GuardedSemaphore.
type Semaphore struct {
	counter   int
	room      Waitingroom
	organizer *Organizer
}

// NewSemaphore creates New Semaphore with the counter at c
func NewSemaphore(o *Organizer, c int) *Semaphore {
	if c < 0 {
		c = 0
	}
	return &Semaphore{counter: c, organizer: o}
}

// p takes one unit, blocking the running thread while there is none. A
// thread woken by v owns the unit it was handed; one readied from outside
// tries again.
func (s *Semaphore) p() {
	for {
		if s.counter > 0 {
			s.counter--
			return
		}
		s.room.enqueue(s.organizer.life)
		if s.organizer.block(&s.room) {
			return
		}
	}
}

// v hands the unit straight to the longest waiter if there is one,
// otherwise returns it to the counter.
func (s *Semaphore) v() {
	if t := s.room.dequeue(); t != nil {
		s.organizer.wakeup(t)
		return
	}
	s.counter++
}

// Counter returns the number of free units
func (s *Semaphore) Counter() int {
	return s.counter
}

// Waiting returns the number of blocked threads
func (s *Semaphore) Waiting() int {
	return s.room.Len()
}
