package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// stdout is reserved for protocol JSON.
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
