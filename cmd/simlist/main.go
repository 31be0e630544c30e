package main

import (
	"fmt"
	"os"

	"github.com/danieljhkim/simlist/internal/cli"
)

var version = "0.1.0"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
