package main

import "fmt"

// SpawnWorkloads creates and readies a thread for each workload
func (k *Kernel) SpawnWorkloads(ws []Workload) error {
	for i, w := range ws {
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", w.Kind, i)
		}
		var entry func()
		switch w.Kind {
		case "counter":
			entry = k.counter(name, w)
		case "buzzer":
			entry = k.buzzing(w)
		case "echo":
			entry = k.echo()
		default:
			return fmt.Errorf("%w: unknown workload kind %q", ErrBadConfig, w.Kind)
		}
		if _, err := k.Spawn(name, w.Priority, w.Stack, entry); err != nil {
			return fmt.Errorf("workload %s: %w", name, err)
		}
	}
	return nil
}

// counter prints a line every w.Every slices of work
func (k *Kernel) counter(name string, w Workload) func() {
	every := w.Every
	if every <= 0 {
		every = 1
	}
	out := k.Output()
	return func() {
		for n := 1; w.Limit == 0 || n <= w.Limit; n++ {
			for i := 0; i < every; i++ {
				k.Step()
			}
			out.Printf("%s: %d\n", name, n)
		}
	}
}

// buzzing plays w.Hz for w.Duration ticks every w.Period ticks
func (k *Kernel) buzzing(w Workload) func() {
	bell := k.Bell()
	buzzer := k.Buzzer()
	return func() {
		for n := 0; w.Repeat == 0 || n < w.Repeat; n++ {
			bell.Sleep(w.Period)
			buzzer.Sound(w.Hz, w.Duration)
		}
	}
}

// echo prints every key typed; q powers the machine off
func (k *Kernel) echo() func() {
	kb := k.Keyboard()
	out := k.Output()
	return func() {
		for {
			key := kb.GetKey()
			if key.Ascii() == 'q' {
				out.Printf("\nbye\n")
				k.Halt()
			}
			if key.Ctrl() {
				out.Printf("^%c", key.Ascii()+'@')
				continue
			}
			out.Write([]byte{key.Ascii()})
		}
	}
}
