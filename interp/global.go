// Package interp is the tree-walking executor of the AIR/AVMC pipeline
// (§4.7-§4.9): a single type-switch over every air.Node kind, operating
// against context.ExecutiveContext and value.Value/Variable. It is the
// Go-idiomatic substitute for the original's function-pointer dispatch
// table described in package avmc's doc comment.
package interp

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/value"
)

// GlobalContext owns everything a single script instance needs across its
// whole lifetime (§5: "each script instance owns its own GlobalContext").
// It must not be shared across goroutines/threads.
type GlobalContext struct {
	GC     *value.GC
	Root   *context.ExecutiveContext
	Sentry *context.RecursionSentry
	Hooks  diag.Hooks
	Opts   options.Compiler

	// RNG backs the `random` modifier and opcode.Random (§4.7, §9): seeded
	// once from crypto/rand at construction, deliberately
	// non-reproducible across runs (§9's resolved Open Question).
	RNG *mathrand.Rand

	// SourceDir is the directory ImportCall resolves relative paths
	// against (the directory of the script that is currently executing
	// the import), updated as nested imports run (§4.9, §6.6).
	SourceDir string
}

// NewGlobalContext builds a fresh script instance: a GC, a root
// ExecutiveContext, a shared recursion sentry, and a crypto-seeded RNG.
func NewGlobalContext(opts options.Compiler, hooks diag.Hooks) *GlobalContext {
	g := &GlobalContext{
		GC:     value.NewGC(),
		Sentry: context.NewRecursionSentry(0),
		Hooks:  hooks,
		Opts:   opts,
		RNG:    mathrand.New(mathrand.NewSource(seedFromCrypto())),
	}
	g.Root = context.NewFunctionContext(nil, g.Sentry)
	g.GC.Roots = func(markVar func(*value.Variable), markVal func(value.Value)) {
		g.Sentry.VisitLiveContexts(func(ctx *context.ExecutiveContext) {
			ctx.VisitRoots(markVar, markVal)
		})
	}
	return g
}

func seedFromCrypto() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x5eed
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
