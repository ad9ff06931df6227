// Command pagetrail manages a Pagetrail book collection from the terminal.
// It shares configuration, storage, and services with the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
