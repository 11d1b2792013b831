//go:build wasm
// +build wasm

package main

import (
	"html"
	"os"
	"syscall/js"
)

// terminal appends kernel output to the #terminal element
type terminal struct {
	elem js.Value
}

func (t terminal) Write(p []byte) (int, error) {
	t.elem.Call("insertAdjacentHTML", "beforeend", html.EscapeString(string(p)))
	return len(p), nil
}

func main() {
	doc := js.Global().Get("document")
	term := terminal{elem: doc.Call("getElementById", "terminal")}
	log := NewLogger(os.Stdout, InfoMask|WarnMask|ErrorMask)

	cfg := DefaultConfig()
	k, err := NewKernel(cfg, term, log)
	if err != nil {
		log.Fatalf(1, "%v", err)
	}
	if err := k.SpawnWorkloads(cfg.Workloads); err != nil {
		log.Fatalf(1, "%v", err)
	}

	// keys typed into the page go to the keyboard controller
	onKey := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		key := args[0].Get("key").String()
		switch key {
		case "Enter":
			key = "\n"
		case "Backspace":
			key = "\b"
		case "Tab":
			key = "\t"
		}
		if len(key) == 1 {
			k.KeyboardController().Type(key)
		}
		return nil
	})
	defer onKey.Release()
	doc.Call("addEventListener", "keydown", onKey)

	if err := k.Run(); err != nil {
		log.Errorf("%v", err)
	}
	term.Write([]byte("\nEnd of program\n"))
}
