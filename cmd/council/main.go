// Command council runs an interactive AI advisory council in the terminal.
package main

import (
	"os"

	"github.com/Hrishikeshgupta2002/AI-Council/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
