//go:build !wasm
// +build !wasm

package main

import (
	tty "github.com/mattn/go-tty"
)

// feedTTY reads keys from the controlling terminal in raw mode and types
// them on the keyboard controller until done is closed.
func feedTTY(kbc *KeyboardController, log *Logger, done <-chan struct{}) error {
	t, err := tty.Open()
	if err != nil {
		return err
	}
	runes := make(chan rune)
	go func() {
		for {
			r, err := t.ReadRune()
			if err != nil {
				log.Warnf("tty: %v", err)
				close(runes)
				return
			}
			runes <- r
		}
	}()
	go func() {
		defer t.Close()
		for {
			select {
			case <-done:
				return
			case r, ok := <-runes:
				if !ok {
					return
				}
				for _, code := range scancodesFor(r) {
					if !kbc.Press(code) {
						log.Warnf("tty: keyboard controller full, lost %q", r)
					}
				}
			}
		}
	}()
	return nil
}
