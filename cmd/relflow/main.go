// Command relflow moves the module descriptors of a project through the
// release, hotfix and development steps of a git-flow style branching model.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
