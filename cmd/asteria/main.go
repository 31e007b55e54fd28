package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/teris-io/cli"

	"github.com/asteria-lang/asteria"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/interp"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/value"
)

var Description = strings.ReplaceAll(`
Asteria is an embeddable, dynamically typed scripting language. This driver
reads a script (a path, or stdin with no argument), compiles it through the
token/parser/AIR/AVMC pipeline and runs it, printing its return value and
exiting non-zero on an uncaught exception.
`, "\n", " ")

var Asteria = cli.New(Description).
	WithArg(cli.NewArg("script", "The script (.as) file to run; omit to read stdin").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("verbose", "Dumps a per-statement trace to stderr").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("optimization-level", "AIR rebind/compression level (0-3, default 1)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("integers-as-reals", "Parses integer-shaped literals as reals").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("implicit-global-names", "Treats unresolved local names as deferred globals").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// pendingSignal is set by the SIGINT handler and consulted at the next
// SingleStepTrap (§6.7): the interpreter only notices a signal at a
// statement boundary, never mid-opcode.
var pendingSignal atomic.Bool

func Handler(args []string, opts map[string]string) int {
	compilerOpts := options.Default()
	if _, ok := opts["integers-as-reals"]; ok {
		compilerOpts.IntegersAsReals = true
	}
	if _, ok := opts["implicit-global-names"]; ok {
		compilerOpts.ImplicitGlobalNames = true
	}
	if lvl, ok := opts["optimization-level"]; ok {
		n, err := strconv.Atoi(lvl)
		if err != nil {
			fmt.Printf("ERROR: --optimization-level must be an integer: %s\n", err)
			return -1
		}
		compilerOpts.OptimizationLevel = n
	}
	_, verbose := opts["verbose"]

	// SingleStepTrap is the only point at which a pending SIGINT is
	// noticed (§6.7), so traps stay on even when --verbose (which only
	// additionally dumps a trace to stderr) is not given.
	compilerOpts.VerboseSingleStepTraps = true

	hooks := diag.Hooks{
		OnSingleStepTrap: func(sloc diag.Loc) error {
			if verbose {
				fmt.Fprintf(os.Stderr, "TRACE %s\n", sloc)
			}
			if pendingSignal.CompareAndSwap(true, false) {
				return diag.NewNativeError("interrupted by signal")
			}
			return nil
		},
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)
	go func() {
		for range sig {
			pendingSignal.Store(true)
		}
	}()

	script := asteria.New(compilerOpts, hooks)

	var err error
	if len(args) < 1 {
		err = script.ReloadStdin()
	} else {
		err = script.ReloadFile(args[0])
	}
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'reload' pass: %s\n", err)
		return -1
	}

	result, rerr := script.Execute(nil)
	if rerr != nil {
		fmt.Printf("uncaught exception: %s\n", formatRuntimeError(rerr))
		return 1
	}
	fmt.Println(interp.DisplayString(result))
	return 0
}

func formatRuntimeError(rerr *diag.RuntimeError) string {
	var b strings.Builder
	b.WriteString(rerr.Error())
	if v, ok := rerr.Payload.(value.Value); ok {
		b.WriteString(": ")
		b.WriteString(interp.DisplayString(v))
	}
	for _, f := range rerr.Backtrace {
		b.WriteString(fmt.Sprintf("\n  at %s (%s)", f.Loc, f.Kind))
	}
	return b.String()
}

func main() { os.Exit(Asteria.Run(os.Args, os.Stdout)) }
