// Command eventctl runs dispatch scenarios and concurrency benchmarks
// against the two-phase event dispatcher.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
