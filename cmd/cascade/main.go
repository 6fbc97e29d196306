package main

import (
	"os"

	"github.com/goliatone/go-cascade/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
