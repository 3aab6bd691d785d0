// Package maincmd implements the bang command-line interface: argument
// handling, the file runner and the interactive REPL loop.
package maincmd

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/dmattp/bang/lang/interp"
)

const binName = "bang"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [-dump] [-i] [<file>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [-dump] [-i] [<file>]
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the Bang! programming language. Runs the source file when
one is provided, the interactive REPL otherwise.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -dump                     Print each parsed program's AST to stderr.
       -i                        Enter the REPL after running the file.

The module search path for require is taken from the BANG_PATH environment
variable (colon-separated directories); BANG_PROMPT overrides the REPL
prompt.
`, binName)
)

// Cmd is the bang command. Flags are parsed into it by mainer; the module
// search path and prompt come from the environment.
type Cmd struct {
	BuildDate string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Dump    bool `flag:"dump"`
	Repl    bool `flag:"i"`

	args []string
	conf config
}

type config struct {
	Path   []string `env:"BANG_PATH" envSeparator:":"`
	Prompt string   `env:"BANG_PROMPT" envDefault:"Bang! "`
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("at most one source file may be provided, got %d", len(c.args))
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, interp.Version, c.BuildDate)
		return mainer.Success
	}

	if err := env.Parse(&c.conf); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment: %s\n", err)
		return mainer.InvalidArgs
	}

	fmt.Fprintf(stdio.Stderr, "Bang! v%s - Welcome!\n", interp.Version)

	var fname string
	if len(c.args) > 0 {
		fname = c.args[0]
	}
	if err := c.run(stdio, fname); err != nil {
		// errors have been printed where they occurred
		return mainer.Failure
	}
	fmt.Fprintln(stdio.Stderr, "toodaloo!")
	return mainer.Success
}
