// Command ntfysub subscribes to ntfy topics and prints received messages as JSON lines.
//
// Usage:
//
//	ntfysub listen --endpoint https://ntfy.sh --topic alerts
//	ntfysub run --config ntfysub.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
