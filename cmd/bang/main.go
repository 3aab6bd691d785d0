package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/dmattp/bang/internal/maincmd"
)

// placeholder value, replaced on build
var buildDate = "{d}" // must be YYYY-mm-DD

func main() {
	c := maincmd.Cmd{BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
