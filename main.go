//go:build !wasm
// +build !wasm

package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"runtime"
)

func main() {
	runtime.LockOSThread()
	configFile := flag.String("config", "", "kernel configuration (*.yaml)")
	enableGUI := flag.Bool("gui", false, "gui mode")
	silent := flag.Bool("silent", false, "silent mode")
	timeline := flag.String("timeline", "", "write a PNG timeline of the run to this file")
	ticks := flag.Uint64("ticks", 0, "power off after this many timer ticks")
	useTTY := flag.Bool("tty", false, "read keys from the terminal")
	flag.Parse()

	log := NewLogger(os.Stderr, InfoMask|WarnMask|ErrorMask)

	// load configuration
	cfg := DefaultConfig()
	if *configFile != "" {
		c, err := LoadConfig(*configFile)
		if err != nil {
			log.Fatalf(1, "%v", err)
		}
		cfg = c
	}
	if *ticks > 0 {
		cfg.HaltAfter = *ticks
	}
	log.SetLevel(cfg.Level())
	var out io.Writer = os.Stdout
	if *silent {
		out = ioutil.Discard
		log.SetLevel(ErrorMask)
	}

	// setup kernel
	k, err := NewKernel(cfg, out, log)
	if err != nil {
		log.Fatalf(1, "%v", err)
	}
	if err := k.SpawnWorkloads(cfg.Workloads); err != nil {
		log.Fatalf(1, "%v", err)
	}
	if *useTTY {
		if err := feedTTY(k.KeyboardController(), log, k.stop); err != nil {
			log.Fatalf(1, "tty: %v", err)
		}
	}

	// run
	chFinished := make(chan error)
	go func(chFinished chan error) {
		chFinished <- k.Run()
	}(chFinished)

	// setup gui
	if *enableGUI {
		if err := runGUI(k, k.stop); err != nil {
			log.Errorf("gui: %v", err)
		}
		k.PowerOff()
	}
	err = <-chFinished
	if !*silent {
		k.Dump(os.Stderr)
	}
	if *timeline != "" {
		if err := SaveTimeline(k, *timeline); err != nil {
			log.Errorf("timeline: %v", err)
		} else {
			fmt.Fprintf(os.Stderr, "timeline written to %s\n", *timeline)
		}
	}
	if err != nil {
		log.Fatalf(2, "%v", err)
	}
}
