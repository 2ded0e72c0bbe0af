package main

import (
	"os"

	"github.com/crmarques/restmodel/internal/cli"
)

func main() {
	if err := cli.Execute(cli.DefaultDependencies()); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
