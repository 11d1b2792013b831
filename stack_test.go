package main

import (
	"errors"
	"io/ioutil"
	"testing"
)

func newTestArena(slabs int) *StackArena {
	return NewStackArena(256, slabs, NewLogger(ioutil.Discard, Nothing))
}

func expectKernelPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if _, ok := recover().(*KernelPanic); !ok {
			t.Fatalf("expected a kernel panic")
		}
	}()
	f()
}

func TestArenaAllocate(t *testing.T) {
	a := newTestArena(4)
	r1, err := a.Allocate(1, 1)
	if err != nil {
		t.Fatal(err.Error())
	}
	r2, err := a.Allocate(2, 2)
	if err != nil {
		t.Fatal(err.Error())
	}
	if r1.Overlaps(r2) {
		t.Fatalf("%s overlaps %s", r1, r2)
	}
	if r1.Base != stackBase || r2.Base != stackBase+256 || r2.Size != 512 {
		t.Fatalf("unexpected layout %s %s", r1, r2)
	}
	if _, err := a.Allocate(3, 2); !errors.Is(err, ErrStackExhausted) {
		t.Fatalf("Allocate past the end returned %v", err)
	}

	a.Release(r1)
	r3, err := a.Allocate(3, 1)
	if err != nil || r3 != r1 {
		t.Fatalf("released slab not reused: %s, %v", r3, err)
	}
}

func TestArenaClaim(t *testing.T) {
	a := newTestArena(4)
	r := Region{Base: stackBase + 256, Size: 512}
	a.Claim(1, r)
	if !a.intact(r) {
		t.Fatalf("canary missing after claim")
	}

	tests := []struct {
		name string
		r    Region
	}{
		{"overlap", Region{Base: stackBase + 512, Size: 256}},
		{"unaligned", Region{Base: stackBase + 8, Size: 256}},
		{"outside", Region{Base: stackBase + 768, Size: 512}},
		{"below", Region{Base: stackBase - 256, Size: 256}},
		{"empty", Region{Base: stackBase, Size: 0}},
		{"wraps", Region{Base: stackBase + 768, Size: ^uintptr(0) - 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKernelPanic(t, func() { a.Claim(2, tt.r) })
		})
	}
}

func TestArenaCanary(t *testing.T) {
	a := newTestArena(2)
	r, _ := a.Allocate(1, 1)
	b := a.Bytes(r)
	b[len(b)-1] = 0xff
	if !a.intact(r) {
		t.Fatalf("write at the top of the stack broke the canary")
	}
	b[0] ^= 0xff
	if a.intact(r) {
		t.Fatalf("overflow into the canary not detected")
	}
}

func TestRegionOverlaps(t *testing.T) {
	tests := []struct {
		a, b Region
		want bool
	}{
		{Region{0, 16}, Region{16, 16}, false},
		{Region{0, 16}, Region{15, 16}, true},
		{Region{8, 4}, Region{0, 16}, true},
		{Region{0, 0}, Region{0, 16}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%s.Overlaps(%s) = %v", tt.a, tt.b, got)
		}
	}
}
