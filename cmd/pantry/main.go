// Command pantry manages a single-file JSON table store.
package main

import (
	"os"

	"github.com/mesh-intelligence/pantry/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
