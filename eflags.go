package main

import (
	"io"

	"github.com/fatih/color"
)

// Eflags is the processor status word
type Eflags uint32

// eflags
const (
	TrapFlag      = uint32(1) << 8 // single step: report every retired slice
	InterruptFlag = uint32(1) << 9
	InServiceFlag = uint32(1) << 14 // an interrupt gate is executing
)

func (ef *Eflags) setVal(flag uint32, value bool) {
	if value {
		ef.set(flag)
	} else {
		ef.unset(flag)
	}
}

func (ef *Eflags) set(flag uint32) {
	*ef = Eflags(uint32(*ef) | flag)
}

func (ef *Eflags) unset(flag uint32) {
	*ef = Eflags(uint32(*ef) & ^flag)
}

func (ef *Eflags) isEnable(flag uint32) bool {
	return uint32(*ef)&flag == flag
}

func (ef *Eflags) String() string {
	s := "EFLAGS="
	if ef.isEnable(TrapFlag) {
		s += "TF "
	}
	if ef.isEnable(InterruptFlag) {
		s += "IF "
	}
	if ef.isEnable(InServiceFlag) {
		s += "IS "
	}
	return s
}

func (ef *Eflags) dump(w io.Writer) {
	color.New(color.FgCyan).Fprintln(w, ef.String())
}
