// Command buildgen generates buildings, walls, doors and roofs from the command line
// and manages the asset registry they are recorded in.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
