package main

import (
	"doccast/cmd"
)

func main() {
	// Cobra calls os.Exit itself when a command fails, so there is
	// nothing to do here beyond dispatching.
	cmd.Execute()
}
