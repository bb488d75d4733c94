package main

import (
	"os"

	"github.com/cocoinbox/cocoinbox/internal/client/cli"
)

func main() {
	os.Exit(cli.Execute())
}
