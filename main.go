package main

import (
	"os"

	"github.com/NomadCrew/feedback-client/cli"
)

func main() {
	os.Exit(cli.Execute())
}
