package main

import (
	"errors"
	"fmt"
)

var (
	// ErrReadyQueueFull is returned when more threads are readied than the
	// ready queue can hold.
	ErrReadyQueueFull = errors.New("ready queue full")
	// ErrStackExhausted is returned when the stack arena has no run of free
	// slabs large enough.
	ErrStackExhausted = errors.New("stack arena exhausted")
	// ErrVectorTaken is returned when a second gate is assigned to a vector.
	ErrVectorTaken = errors.New("vector already assigned")
	// ErrThreadState is returned when a thread is readied from a state other
	// than NEW or BLOCKED.
	ErrThreadState = errors.New("thread not in a readyable state")
	// ErrBadConfig wraps every configuration validation failure.
	ErrBadConfig = errors.New("bad config")
)

// KernelPanic is the value the kernel panics with on unrecoverable
// configuration or protocol errors. The machine does not continue.
type KernelPanic struct {
	Reason string
}

func (p *KernelPanic) Error() string {
	return "kernel panic: " + p.Reason
}

func kernelPanic(log *Logger, format string, args ...interface{}) {
	p := &KernelPanic{Reason: fmt.Sprintf(format, args...)}
	if log != nil {
		log.Errorf("%s", p.Error())
	}
	panic(p)
}
