// Command cssbox renders HTML documents to PNG or SVG images, and
// runs reference test suites.
package main

import (
	"fmt"
	"os"

	"github.com/benoitkugler/cssbox/logger"
)

func main() {
	err := newRootCmd().Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
