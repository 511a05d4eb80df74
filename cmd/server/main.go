package main

import "os"

// main hands off to the command tree. Wiring lives in app.go so both the
// server and the capabilities dump share it.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
