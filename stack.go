package main

import (
	"encoding/binary"
	"fmt"
)

// stackBase is where the arena sits in the simulated address space
const stackBase = uintptr(0x00200000)

// stackCanary is stamped at the low end of every stack
const stackCanary = uint64(0x57ac_cafe_dead_beef)

// Region is a contiguous range of the simulated address space
type Region struct {
	Base uintptr
	Size uintptr
}

// End returns the first address past r
func (r Region) End() uintptr {
	return r.Base + r.Size
}

// Overlaps reports whether r and o share an address
func (r Region) Overlaps(o Region) bool {
	return r.Size != 0 && o.Size != 0 && r.Base < o.End() && o.Base < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("[0x%08x, 0x%08x)", r.Base, r.End())
}

// StackArena hands out thread stacks as runs of fixed-size slabs.
//
//	stackBase
//	slab 0 | slab 1 | ... | slab n-1
//
// Each stack grows down from End(); its lowest 8 bytes hold stackCanary.
type StackArena struct {
	slab   uintptr
	memory []byte
	owner  []int // id+1 of the thread owning each slab, 0 when free
	log    *Logger
}

// NewStackArena creates New StackArena of slabs slabs, slab bytes each
func NewStackArena(slab, slabs int, log *Logger) *StackArena {
	return &StackArena{
		slab:   uintptr(slab),
		memory: make([]byte, slab*slabs),
		owner:  make([]int, slabs),
		log:    log,
	}
}

// Region returns the address range covered by the whole arena
func (a *StackArena) Region() Region {
	return Region{Base: stackBase, Size: uintptr(len(a.memory))}
}

// Allocate finds the first run of slabs free slabs and assigns it to thread id.
func (a *StackArena) Allocate(id, slabs int) (Region, error) {
	if slabs <= 0 {
		slabs = 1
	}
	run := 0
	for i := range a.owner {
		if a.owner[i] != 0 {
			run = 0
			continue
		}
		run++
		if run == slabs {
			first := i - slabs + 1
			r := Region{Base: stackBase + uintptr(first)*a.slab, Size: uintptr(slabs) * a.slab}
			a.Claim(id, r)
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("%w: %d slabs for thread %d", ErrStackExhausted, slabs, id)
}

// Claim assigns a caller-chosen region to thread id. A region that is not
// slab aligned, lies outside the arena or overlaps a live stack is a
// configuration error the kernel cannot recover from.
func (a *StackArena) Claim(id int, r Region) {
	arena := a.Region()
	if r.Size == 0 || r.Base < arena.Base || r.Base > arena.End() || r.Size > arena.End()-r.Base {
		kernelPanic(a.log, "stack %s of thread %d outside arena %s", r, id, arena)
	}
	if (r.Base-stackBase)%a.slab != 0 || r.Size%a.slab != 0 {
		kernelPanic(a.log, "stack %s of thread %d not slab aligned", r, id)
	}
	first := int((r.Base - stackBase) / a.slab)
	last := int((r.End() - stackBase) / a.slab)
	for i := first; i < last; i++ {
		if a.owner[i] != 0 && a.owner[i] != id+1 {
			kernelPanic(a.log, "stack %s of thread %d overlaps thread %d", r, id, a.owner[i]-1)
		}
	}
	for i := first; i < last; i++ {
		a.owner[i] = id + 1
	}
	a.stamp(r)
}

// Release returns r to the arena
func (a *StackArena) Release(r Region) {
	first := int((r.Base - stackBase) / a.slab)
	last := int((r.End() - stackBase) / a.slab)
	for i := first; i < last && i < len(a.owner); i++ {
		a.owner[i] = 0
	}
}

// Bytes returns the memory backing r
func (a *StackArena) Bytes(r Region) []byte {
	off := r.Base - stackBase
	return a.memory[off : off+r.Size]
}

func (a *StackArena) stamp(r Region) {
	binary.LittleEndian.PutUint64(a.Bytes(r)[:8], stackCanary)
}

// intact reports whether the canary at the low end of r survived
func (a *StackArena) intact(r Region) bool {
	if r.Size == 0 {
		return true
	}
	return binary.LittleEndian.Uint64(a.Bytes(r)[:8]) == stackCanary
}
