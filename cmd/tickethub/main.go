// Command tickethub parses pasted broker option positions and prints trade
// tickets: classified strategy, risk metrics, sizing, and hold/roll/close
// recommendations with GTC profit tiers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
