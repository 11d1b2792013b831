package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestKernel returns a kernel whose timer is clocked by processor slices:
// one Step is one tick and every tick ends the quantum.
func newTestKernel(t *testing.T, tune func(*Config)) (*Kernel, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workloads = nil
	cfg.TickMS = 0
	cfg.TickSteps = 1
	cfg.TicksPerQuantum = 1
	cfg.StackSlab = 256
	cfg.StackSlabs = 16
	cfg.LogLevel = "none"
	if tune != nil {
		tune(cfg)
	}
	out := &bytes.Buffer{}
	k, err := NewKernel(cfg, out, NewLogger(ioutil.Discard, cfg.Level()))
	if err != nil {
		t.Fatal(err.Error())
	}
	return k, out
}

// run runs k until it is powered off
func run(t *testing.T, k *Kernel) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- k.Run()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		k.PowerOff()
		t.Fatalf("kernel still running after 10s")
	}
	return nil
}

func spawn(t *testing.T, k *Kernel, name string, priority int, entry func()) *Thread {
	t.Helper()
	th, err := k.Spawn(name, priority, 1, entry)
	if err != nil {
		t.Fatal(err.Error())
	}
	return th
}

func TestEveryReadiedThreadRuns(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	const n = 6
	ran := map[int]bool{}
	corrupted := map[int]bool{}
	var threads []*Thread
	for i := 0; i < n; i++ {
		threads = append(threads, spawn(t, k, "worker", 10+i%3, func() {
			self := k.Current()
			ran[self.ID()] = true
			scratch := self.Scratch()
			for j := 0; j < 20; j++ {
				binary.LittleEndian.PutUint64(scratch, uint64(self.ID()*1000+j))
				k.Step()
				if binary.LittleEndian.Uint64(scratch) != uint64(self.ID()*1000+j) {
					corrupted[self.ID()] = true
				}
			}
		}))
	}
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	for _, th := range threads {
		if !ran[th.ID()] {
			t.Errorf("%s never ran", th)
		}
		if corrupted[th.ID()] {
			t.Errorf("%s saw its stack change while it was switched out", th)
		}
		if th.State() != ThreadExited {
			t.Errorf("%s is %s after the run", th, th.State())
		}
		if th.Stats().Dispatches < 2 {
			t.Errorf("%s dispatched %d times, want preemption", th, th.Stats().Dispatches)
		}
	}
}

func TestHaltAfterTicks(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.HaltAfter = 10 })
	spawn(t, k, "spin", 10, func() {
		for {
			k.Step()
		}
	})
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	if k.Ticks() != 10 {
		t.Fatalf("halted after %d ticks, want 10", k.Ticks())
	}
	if s := k.Status(); s.Ticks != 10 || s.Running != "spin(1)" {
		t.Fatalf("last status %+v", s)
	}
}

func TestPowerOffFromHost(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	var steps int64
	spawn(t, k, "spin", 10, func() {
		for {
			k.Step()
			atomic.AddInt64(&steps, 1)
		}
	})
	done := make(chan error, 1)
	go func() {
		done <- k.Run()
	}()
	for atomic.LoadInt64(&steps) < 1000 {
		time.Sleep(time.Millisecond)
	}
	k.PowerOff()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err.Error())
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Run did not return after power off")
	}
	n := atomic.LoadInt64(&steps)
	time.Sleep(50 * time.Millisecond)
	if m := atomic.LoadInt64(&steps); m != n {
		t.Fatalf("thread kept running after Run returned: steps %d -> %d", n, m)
	}
}

func TestKernelPanicStopsMachine(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	spawn(t, k, "stray", 10, func() {
		k.pic.Raise(IRQSerial)
		k.Step()
		t.Errorf("thread continued after an unexpected interrupt")
	})
	err := run(t, k)
	var kp *KernelPanic
	if !errors.As(err, &kp) {
		t.Fatalf("Run returned %v, want a kernel panic", err)
	}
	if !strings.Contains(kp.Reason, "unexpected interrupt") {
		t.Errorf("reason = %q", kp.Reason)
	}
}

func TestCreateAtOverlap(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	defer k.PowerOff()
	th, err := k.Create("a", 10, 2, func() {})
	if err != nil {
		t.Fatal(err.Error())
	}
	expectKernelPanic(t, func() {
		k.CreateAt("b", 10, Region{Base: th.Stack().Base + 256, Size: 256}, func() {})
	})
}

func TestStackExhausted(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.StackSlabs = 3 })
	defer k.PowerOff()
	// the idle thread holds one slab
	if _, err := k.Create("a", 10, 2, func() {}); err != nil {
		t.Fatal(err.Error())
	}
	if _, err := k.Spawn("b", 10, 1, func() {}); !errors.Is(err, ErrStackExhausted) {
		t.Fatalf("Spawn returned %v, want ErrStackExhausted", err)
	}
}

func TestExitedStackReused(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.StackSlabs = 2 })
	var second *Thread
	spawn(t, k, "first", 10, func() {
		var err error
		second, err = k.Spawn("second", 5, 1, func() {})
		if err == nil {
			t.Errorf("second thread got a stack while the first is live")
		}
	})
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	if second != nil {
		t.Fatalf("unexpected thread %s", second)
	}
	if _, err := k.arena.Allocate(9, 1); err != nil {
		t.Fatalf("stack of the exited thread not released: %v", err)
	}
}

func TestDump(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	spawn(t, k, "worker", 10, func() { k.Step() })
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	var buf bytes.Buffer
	k.Dump(&buf)
	for _, want := range []string{"EFLAGS=", "running:", "worker", "EXITED"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestSingleStep(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	traced := spawn(t, k, "traced", 10, func() {
		k.SingleStep(true)
		for i := 0; i < 3; i++ {
			k.Step()
		}
		k.SingleStep(false)
		k.Step()
	})
	plain := spawn(t, k, "plain", 10, func() {
		for i := 0; i < 5; i++ {
			k.Step()
		}
	})
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	if n := traced.Stats().Traps; n != 3 {
		t.Errorf("traced thread trapped %d times, want 3", n)
	}
	if n := plain.Stats().Traps; n != 0 {
		t.Errorf("trap flag leaked into another thread: %d traps", n)
	}
}
