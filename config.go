package main

import (
	"fmt"
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config is the machine and kernel configuration, read from YAML.
type Config struct {
	TickMS          int        `yaml:"tick_ms"`    // 0: the timer counts processor slices
	TickSteps       int        `yaml:"tick_steps"` // slices per tick when tick_ms is 0
	TicksPerQuantum int        `yaml:"ticks_per_quantum"`
	StackSlab       int        `yaml:"stack_slab"`
	StackSlabs      int        `yaml:"stack_slabs"`
	MaxThreads      int        `yaml:"max_threads"`
	KeyboardBuffer  int        `yaml:"keyboard_buffer"`
	LogLevel        string     `yaml:"log_level"`
	HaltAfter       uint64     `yaml:"halt_after"` // ticks; 0 runs until halted
	Workloads       []Workload `yaml:"workloads"`
}

// Workload describes one demo thread
type Workload struct {
	Kind     string `yaml:"kind"` // counter, buzzer or echo
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Stack    int    `yaml:"stack"`    // slabs; 0 means one
	Limit    int    `yaml:"limit"`    // counter: stop after this many lines, 0 never
	Every    int    `yaml:"every"`    // counter: slices per line
	Period   uint64 `yaml:"period"`   // buzzer: ticks between tones
	Hz       int    `yaml:"hz"`       // buzzer: frequency
	Duration uint64 `yaml:"duration"` // buzzer: ticks per tone
	Repeat   int    `yaml:"repeat"`   // buzzer: tones to play, 0 forever
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		TickMS:          10,
		TickSteps:       100,
		TicksPerQuantum: 2,
		StackSlab:       4096,
		StackSlabs:      64,
		MaxThreads:      32,
		KeyboardBuffer:  64,
		LogLevel:        "info",
		Workloads: []Workload{
			{Kind: "counter", Name: "count-a", Priority: 20, Every: 50000},
			{Kind: "counter", Name: "count-b", Priority: 20, Every: 50000},
			{Kind: "buzzer", Name: "buzz-440", Priority: 30, Period: 100, Hz: 440, Duration: 20},
			{Kind: "buzzer", Name: "buzz-880", Priority: 30, Period: 150, Hz: 880, Duration: 10},
			{Kind: "echo", Name: "echo", Priority: 40},
		},
	}
}

// ParseConfig reads YAML over the defaults and validates the result
func ParseConfig(b []byte) (*Config, error) {
	c := DefaultConfig()
	c.Workloads = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads the YAML file at path
func LoadConfig(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// Validate checks the ranges the kernel relies on
func (c *Config) Validate() error {
	switch {
	case c.TickMS < 0 || c.TickMS > 0xffff:
		return fmt.Errorf("%w: tick_ms %d out of range", ErrBadConfig, c.TickMS)
	case c.TickSteps <= 0:
		return fmt.Errorf("%w: tick_steps must be positive", ErrBadConfig)
	case c.TicksPerQuantum <= 0:
		return fmt.Errorf("%w: ticks_per_quantum must be positive", ErrBadConfig)
	case c.StackSlab < 64 || c.StackSlab%16 != 0:
		return fmt.Errorf("%w: stack_slab %d must be a multiple of 16 and at least 64", ErrBadConfig, c.StackSlab)
	case c.StackSlabs <= 0:
		return fmt.Errorf("%w: stack_slabs must be positive", ErrBadConfig)
	case c.MaxThreads <= 0:
		return fmt.Errorf("%w: max_threads must be positive", ErrBadConfig)
	case c.KeyboardBuffer <= 0:
		return fmt.Errorf("%w: keyboard_buffer must be positive", ErrBadConfig)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for i, w := range c.Workloads {
		switch w.Kind {
		case "counter", "echo":
		case "buzzer":
			if w.Hz <= 0 || w.Duration == 0 {
				return fmt.Errorf("%w: workload %d: buzzer needs hz and duration", ErrBadConfig, i)
			}
		default:
			return fmt.Errorf("%w: workload %d: unknown kind %q", ErrBadConfig, i, w.Kind)
		}
		if w.Stack < 0 || w.Stack > c.StackSlabs {
			return fmt.Errorf("%w: workload %d: stack %d slabs", ErrBadConfig, i, w.Stack)
		}
	}
	return nil
}

// Level returns the log mask for LogLevel
func (c *Config) Level() MaskLevel {
	m, err := ParseLevel(c.LogLevel)
	if err != nil {
		return InfoMask | WarnMask | ErrorMask
	}
	return m
}
