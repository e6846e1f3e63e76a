package main

import (
	"context"
	"os"

	"github.com/spherical/pdf2text/cmd/pdf2text/commands"
)

var version = "dev"

func main() {
	os.Exit(commands.Execute(context.Background(), version, os.Args[1:], os.Stdout, os.Stderr))
}
