package main

import (
	"os"

	"github.com/YoshitsuguKoike/rljournal/internal/interface/cli"
)

func main() {
	os.Exit(cli.Execute())
}
