package main

import (
	"errors"
	"strings"
	"testing"
)

func TestCounterAndBuzzerWorkloads(t *testing.T) {
	k, out := newTestKernel(t, nil)
	err := k.SpawnWorkloads([]Workload{
		{Kind: "counter", Name: "count", Priority: 20, Every: 2, Limit: 3},
		{Kind: "buzzer", Priority: 30, Period: 1, Hz: 440, Duration: 2, Repeat: 2},
	})
	if err != nil {
		t.Fatal(err.Error())
	}
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	for _, want := range []string{"count: 1\n", "count: 2\n", "count: 3\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q: %q", want, out.String())
		}
	}
	if strings.Contains(out.String(), "count: 4") {
		t.Errorf("counter ran past its limit: %q", out.String())
	}
	if n := len(k.Speaker().Beeps()); n != 2 {
		t.Errorf("%d tones, want 2", n)
	}
	if k.output.Written() != out.Len() {
		t.Errorf("output counted %d bytes, sink got %d", k.output.Written(), out.Len())
	}
}

func TestEchoWorkload(t *testing.T) {
	k, out := newTestKernel(t, nil)
	if err := k.SpawnWorkloads([]Workload{{Kind: "echo"}}); err != nil {
		t.Fatal(err.Error())
	}
	k.KeyboardController().Type("h\x03q")
	if err := run(t, k); err != nil {
		t.Fatal(err.Error())
	}
	if out.String() != "h^C\nbye\n" {
		t.Fatalf("echo wrote %q", out.String())
	}
	if th := k.Threads()[1]; th.Name() != "echo-0" {
		t.Fatalf("unnamed workload called %q", th.Name())
	}
}

func TestUnknownWorkload(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	defer k.PowerOff()
	err := k.SpawnWorkloads([]Workload{{Kind: "printer"}})
	if !errors.Is(err, ErrBadConfig) {
		t.Fatalf("SpawnWorkloads returned %v", err)
	}
}
