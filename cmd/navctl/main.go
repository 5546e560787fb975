// Command navctl inspects building definitions and plans routes offline.
package main

import (
	"os"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
