// Package asteria is the embedder-facing API (§6.6): a Script owns one
// GlobalContext and exposes the reload/execute surface the teacher's own
// cmd/*/main.go drivers expect from a Parser+Lowerer+CodeGenerator triple,
// collapsed here into a single `Script` since the five Asteria phases
// (token, syntax, air, avmc, interp) are internal pipeline stages rather
// than separate CLI-visible tools.
package asteria

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/avmc"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/interp"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/syntax"
	"github.com/asteria-lang/asteria/token"
	"github.com/asteria-lang/asteria/value"
)

// Script is one loaded, reloadable top-level program (§6.6). It is not
// safe for concurrent use from more than one goroutine (§5: a Value/
// Variable may not migrate across threads).
type Script struct {
	global *interp.GlobalContext
	name   string
	queue  avmc.Queue
	loaded bool
}

// New builds an unloaded Script. Call a Reload* method before Execute.
func New(opts options.Compiler, hooks diag.Hooks) *Script {
	return &Script{global: interp.NewGlobalContext(opts, hooks)}
}

// Options returns the compiler options this script was constructed with.
func (s *Script) Options() options.Compiler { return s.global.Opts }

// Reload runs phases (1)-(4) (§2: token stream through AIR optimizer) over
// r, named name, and replaces the script's top-level body. startingLine,
// when positive, offsets line numbers reported in diagnostics (useful for
// a REPL splicing a new chunk below previously-seen input); zero or
// negative means "start at line 1".
func (s *Script) Reload(name string, startingLine int32, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("asteria: reload %s: %w", name, err)
	}

	toks, perr := token.TokenizeFrom(name, startingLine, src, s.global.Opts)
	if perr != nil {
		return fmt.Errorf("asteria: reload %s: %w", name, perr)
	}
	stmts, perr := syntax.NewParser(toks, s.global.Opts, 0).ParseStatements()
	if perr != nil {
		return fmt.Errorf("asteria: reload %s: %w", name, perr)
	}

	actx := context.NewAnalyticContext(nil, true)
	body, err := air.GenerateStatements(stmts, actx, s.global.Opts)
	if err != nil {
		return fmt.Errorf("asteria: reload %s: %w", name, err)
	}
	body = air.Rebind(body, s.global.Root, s.global.Opts.OptimizationLevel)

	s.name = name
	s.queue = avmc.Solidify(body)
	s.loaded = true
	return nil
}

// Queue exposes the solidified instruction queue of the loaded body, for
// diagnostics (dead-code reporting, §4.5).
func (s *Script) Queue() avmc.Queue { return s.queue }

// ReloadString is Reload over an in-memory source string.
func (s *Script) ReloadString(name, src string) error {
	return s.Reload(name, 1, bytes.NewReader([]byte(src)))
}

// ReloadStdin reads and loads the remainder of os.Stdin, named "<stdin>"
// (§6.6, §6.7's REPL driver).
func (s *Script) ReloadStdin() error {
	return s.Reload("<stdin>", 1, os.Stdin)
}

// ReloadFile reads and loads the script at path; the directory containing
// path becomes the base for relative `import` calls (§4.9, §6.6).
func (s *Script) ReloadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("asteria: reload %s: %w", path, err)
	}
	defer f.Close()
	if err := s.Reload(path, 1, f); err != nil {
		return err
	}
	s.global.SourceDir = dirOf(path)
	return nil
}

func dirOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i < 0 {
		return "."
	}
	return path[:i]
}

// Execute runs the loaded top-level body as the implicit `...`-parameter
// function (§6.6): each arg is wrapped as a Temporary, in order, and bound
// to `...` exactly like any other variadic call's extra arguments
// (§4.9's bindParams), and the resulting reference is dereferenced to a
// plain Value for the embedder.
func (s *Script) Execute(args []value.Value) (value.Value, *diag.RuntimeError) {
	if !s.loaded {
		return value.Value{}, diag.NewNativeError("asteria: Execute called before Reload")
	}

	top := interp.TopLevelFunction(s.name, s.queue.Nodes, s.global)
	result, rerr := interp.Invoke(top, wrapArgs(args), diag.Synthetic(s.name), s.global)
	if rerr != nil {
		return value.Value{}, rerr
	}
	if result.Kind() == context.KindVoid {
		// A script that never executes a `return` completes with a void
		// reference, surfaced to the embedder as null.
		return value.Null_(), nil
	}
	v, err := result.DereferenceReadonly()
	if err != nil {
		return value.Value{}, diag.NewNativeError(err.Error())
	}
	return v, nil
}

func wrapArgs(args []value.Value) []context.Reference {
	out := make([]context.Reference, len(args))
	for i, v := range args {
		out[i] = context.Temporary(v)
	}
	return out
}
