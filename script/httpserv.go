//go:build ignore
// +build ignore

// httpserv serves the wasm build of the kernel:
//
//	GOOS=js GOARCH=wasm go build -o wasm/kernel.wasm .
//	go run script/httpserv.go
package main

import (
	"flag"
	"log"
	"net/http"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	dir := flag.String("dir", "wasm/", "directory holding index.html and kernel.wasm")
	flag.Parse()

	http.Handle("/", http.FileServer(http.Dir(*dir)))
	log.Printf("serving %s on %s", *dir, *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
