//go:build !wasm
// +build !wasm

package main

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
)

const (
	height = 160
	width  = 320
)

var errWindowClosed = errors.New("status window closed")

// statusText renders a snapshot for the status window
func statusText(s Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ticks: %d  running: %s\n", s.Ticks, s.Running)
	fmt.Fprintf(&b, "ready: %d  sleeping: %d  keys: %d\n", s.Queued, s.Sleepers, s.Keys)
	if s.Tone > 0 {
		fmt.Fprintf(&b, "speaker: %d Hz\n", s.Tone)
	} else {
		fmt.Fprintf(&b, "speaker: off\n")
	}
	for _, t := range s.Threads {
		fmt.Fprintf(&b, "%3d %-10s %-7s %6d\n", t.ID, t.Name, t.State, t.Ticks)
	}
	return b.String()
}

// runGUI shows the kernel status until the window is closed or the machine
// is powered off. It must run on the main goroutine.
func runGUI(k *Kernel, done <-chan struct{}) error {
	update := func(screen *ebiten.Image) error {
		select {
		case <-done:
			return errWindowClosed
		default:
		}
		if ebiten.IsDrawingSkipped() {
			return nil
		}
		bg := color.RGBA{0x10, 0x10, 0x30, 0xff}
		if _, on := k.Speaker().Playing(); on {
			bg = color.RGBA{0x30, 0x10, 0x10, 0xff}
		}
		screen.Fill(bg)
		ebitenutil.DebugPrint(screen, statusText(k.Status()))
		return nil
	}
	err := ebiten.Run(update, width, height, 2, "tinykernel")
	if err == errWindowClosed {
		return nil
	}
	return err
}
