package interp

import (
	"os"
	"path/filepath"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/avmc"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/syntax"
	"github.com/asteria-lang/asteria/token"
	"github.com/asteria-lang/asteria/value"
)

// execFunctionCall implements §4.9: Nargs arguments are popped off the
// operand stack into a local slice (so the last pushed becomes the last
// argument), then the callee reference is popped. The callee reference's
// modifier chain is not inspected, so no `self` is bound for the call. A
// non-none PtcMode packages everything into a PtcArguments instead of
// invoking inline.
func execFunctionCall(n air.FunctionCall, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	args := make([]context.Reference, n.Nargs)
	for i := n.Nargs - 1; i >= 0; i-- {
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		args[i] = r
	}
	calleeRef, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	calleeVal, err := calleeRef.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if calleeVal.Kind() != value.Function {
		return air.StatusNext, diag.NewNativeError("attempt to call a " + calleeVal.Kind().String() + " value")
	}
	fn := calleeVal.AsFunction()

	mode := context.PtcMode(n.PtcMode)
	if mode != context.PtcNone {
		push(ctx, context.FromPtcArguments(&context.PtcArguments{Sloc: n.Sloc, Mode: mode, Callee: fn, ArgStack: args}))
		return air.StatusReturnRef, nil
	}

	result, rerr := Invoke(fn, args, n.Sloc, g)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	push(ctx, result)
	return air.StatusNext, nil
}

// execVariadicCall implements §4.9's `call...`: the stack top is a
// generator (an array, a callable producing a count then per-index
// values, or null meaning zero arguments), beneath it the callee.
func execVariadicCall(n air.VariadicCall, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	genRef, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	calleeRef, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	genVal, err := genRef.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	calleeVal, err := calleeRef.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if calleeVal.Kind() != value.Function {
		return air.StatusNext, diag.NewNativeError("attempt to call a " + calleeVal.Kind().String() + " value")
	}
	fn := calleeVal.AsFunction()

	var args []context.Reference
	switch genVal.Kind() {
	case value.Null:
		args = nil
	case value.Array:
		items := genVal.AsArray().Items()
		args = make([]context.Reference, len(items))
		for i, v := range items {
			args[i] = context.Temporary(v)
		}
	case value.Function:
		countRef, rerr := Invoke(genVal.AsFunction(), nil, n.Sloc, g)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		countVal, err := countRef.DereferenceReadonly()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		if countVal.Kind() != value.Integer {
			return air.StatusNext, diag.NewNativeError("variadic generator must return an integer count")
		}
		count := countVal.AsInt()
		args = make([]context.Reference, count)
		for i := int64(0); i < count; i++ {
			argRef, rerr := Invoke(genVal.AsFunction(), []context.Reference{context.Temporary(value.FromInt(i))}, n.Sloc, g)
			if rerr != nil {
				return air.StatusNext, rerr
			}
			args[i] = argRef
		}
	default:
		return air.StatusNext, diag.NewNativeError("variadic generator must be an array, function, or null")
	}

	mode := context.PtcMode(n.PtcMode)
	if mode != context.PtcNone {
		push(ctx, context.FromPtcArguments(&context.PtcArguments{Sloc: n.Sloc, Mode: mode, Callee: fn, ArgStack: args}))
		return air.StatusReturnRef, nil
	}
	result, rerr := Invoke(fn, args, n.Sloc, g)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	push(ctx, result)
	return air.StatusNext, nil
}

// execImportCall implements §6.6's import mechanics: a string path
// (Nargs trailing arguments, plus the path beneath them), read/compiled/
// executed as its own top-level script, whose sole implicit `...`
// parameter receives the caller's trailing arguments.
func execImportCall(n air.ImportCall, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	args := make([]context.Reference, n.Nargs)
	for i := n.Nargs - 1; i >= 0; i-- {
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		args[i] = r
	}
	pathRef, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	pathVal, err := pathRef.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if pathVal.Kind() != value.String {
		return air.StatusNext, diag.NewNativeError("import path must be a string")
	}
	path := pathVal.AsString()
	if !filepath.IsAbs(path) && g.SourceDir != "" {
		path = filepath.Join(g.SourceDir, path)
	}

	fn, rerr := LoadModule(path, g)
	if rerr != nil {
		return air.StatusNext, rerr
	}

	// Relative imports inside the module resolve against its own
	// directory, not the importer's.
	savedDir := g.SourceDir
	g.SourceDir = filepath.Dir(path)
	result, rerr := Invoke(fn, args, n.Sloc, g)
	g.SourceDir = savedDir
	if rerr != nil {
		return air.StatusNext, rerr
	}
	push(ctx, result)
	return air.StatusNext, nil
}

// LoadModule tokenizes, parses, and AIR-generates the script at path,
// wrapping its top-level statements as a variadic closure whose sole
// parameter is the implicit `...` (§6.6: "the top-level function whose
// sole parameter is `...`"). The closure captures a fresh root
// ExecutiveContext chained to g.Root, so a module sees the embedder's
// globals but not the importing script's locals.
func LoadModule(path string, g *GlobalContext) (value.Callable, *diag.RuntimeError) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.NewNativeError("import: " + err.Error())
	}
	toks, perr := token.Tokenize(path, src, g.Opts)
	if perr != nil {
		return nil, diag.NewNativeError("import: " + perr.Error())
	}
	stmts, perr := syntax.NewParser(toks, g.Opts, 0).ParseStatements()
	if perr != nil {
		return nil, diag.NewNativeError("import: " + perr.Error())
	}
	actx := context.NewAnalyticContext(nil, true)
	body, err := air.GenerateStatements(stmts, actx, g.Opts)
	if err != nil {
		return nil, diag.NewNativeError("import: " + err.Error())
	}
	body = air.Rebind(body, g.Root, g.Opts.OptimizationLevel)
	return TopLevelFunction(path, avmc.Solidify(body).Nodes, g), nil
}

// TopLevelFunction wraps an already-generated AIR body (statements
// produced directly by a Reload, rather than read from an import path) as
// the variadic closure the embedder invokes via Script.Execute (§6.6:
// "the top-level function, whose sole parameter is `...`").
func TopLevelFunction(name string, body []air.Node, g *GlobalContext) value.Callable {
	return &userFunction{
		name:     name,
		variadic: true,
		body:     body,
		captured: g.Root,
		global:   g,
	}
}

// Invoke runs fn with args, trampolining through any chain of proper tail
// calls in a flat loop rather than Go recursion, so a PTC chain of
// unbounded depth never grows the host stack (§4.9, §8 scenario 3).
func Invoke(fn value.Callable, args []context.Reference, sloc diag.Loc, g *GlobalContext) (context.Reference, *diag.RuntimeError) {
	mode := context.PtcNone

	// Between hops the pending call lives only in these locals while its
	// originating frame is already closed; parking it on the root's
	// alternate stack keeps its callee's captures and its argument
	// Variables visible to the GC.
	pinDepth := g.Root.AltStack().Count()
	defer g.Root.AltStack().Truncate(pinDepth)

	for {
		result, rerr := invokeOnce(fn, args, sloc, g)
		if rerr != nil {
			return context.Reference{}, rerr
		}
		if result.Kind() != context.KindPtcArgs {
			return applyPtcMode(mode, result), nil
		}
		ptc := result.PtcArguments()
		g.Root.AltStack().Truncate(pinDepth)
		g.Root.AltStack().Push(result)
		fn, args, sloc, mode = ptc.Callee, ptc.ArgStack, ptc.Sloc, ptc.Mode
	}
}

func applyPtcMode(mode context.PtcMode, ref context.Reference) context.Reference {
	switch mode {
	case context.PtcVoid:
		return context.Void()
	case context.PtcByVal:
		val, err := ref.DereferenceReadonly()
		if err != nil {
			return context.Temporary(value.Null_())
		}
		return context.Temporary(val)
	default:
		return ref
	}
}

func invokeOnce(fn value.Callable, args []context.Reference, sloc diag.Loc, g *GlobalContext) (context.Reference, *diag.RuntimeError) {
	uf, ok := fn.(*userFunction)
	if !ok {
		return context.Reference{}, diag.NewNativeError("callee is not invocable")
	}
	if err := g.Hooks.FunctionCall(sloc, uf.FuncName()); err != nil {
		return context.Reference{}, asRuntimeError(err)
	}
	leave, err := g.Sentry.Enter()
	if err != nil {
		return context.Reference{}, diag.NewNativeError(err.Error())
	}
	defer leave()

	callCtx := context.NewFunctionContext(uf.captured, g.Sentry)
	bindParams(uf, args, callCtx, g)

	status, rerr := execBlock(uf.body, callCtx, g)

	// Capture the result before deferred expressions run: a deferred body
	// evaluates on the same frame stack and would otherwise sit on top of
	// the value the return left there.
	result := context.Void()
	if rerr == nil && status == air.StatusReturnRef {
		if r, popErr := callCtx.OperandStack().Pop(); popErr == nil {
			result = r
		}
	}

	status, rerr = leaveScope(callCtx, status, rerr)
	if rerr != nil {
		rerr.AppendFrame(diag.FrameFunc, sloc, valueStringer{payloadValue(rerr)})
		if hookErr := g.Hooks.FunctionExcept(sloc, uf.FuncName(), rerr); hookErr != nil {
			return context.Reference{}, asRuntimeError(hookErr)
		}
		return context.Reference{}, rerr
	}
	if status != air.StatusReturnRef {
		result = context.Void()
	}

	if resVal, derr := result.DereferenceReadonly(); derr == nil {
		if err := g.Hooks.FunctionReturn(sloc, uf.FuncName(), resVal); err != nil {
			return context.Reference{}, asRuntimeError(err)
		}
	}
	return result, nil
}

func bindParams(uf *userFunction, args []context.Reference, callCtx *context.ExecutiveContext, g *GlobalContext) {
	for i, p := range uf.params {
		var argRef context.Reference
		if i < len(args) {
			argRef = args[i]
		} else {
			argRef = context.Temporary(value.Null_())
		}
		bindOne(callCtx, p, argRef, g)
	}
	if uf.variadic {
		var extras []context.Reference
		if len(args) > len(uf.params) {
			extras = args[len(uf.params):]
		}
		items := make([]value.Value, len(extras))
		for i, r := range extras {
			v, err := r.DereferenceReadonly()
			if err == nil {
				items[i] = v.Clone()
			}
		}
		v := g.GC.Allocate()
		v.Initialize(value.FromArray(value.NewArray(items...)), true)
		*callCtx.OpenNamedReference("...") = context.FromVariable(v)
	}
}

// bindOne binds a single parameter: a bare Variable-kind argument (passed
// `ref` at the call site, so CheckArgument left it untouched) aliases the
// caller's own Variable cell; anything else is bound by value into a
// fresh Variable (§4.9).
func bindOne(callCtx *context.ExecutiveContext, name string, argRef context.Reference, g *GlobalContext) {
	if argRef.Kind() == context.KindVariable && len(argRef.Modifiers()) == 0 {
		*callCtx.OpenNamedReference(name) = argRef
		return
	}
	val, err := argRef.DereferenceReadonly()
	if err != nil {
		val = value.Null_()
	}
	v := g.GC.Allocate()
	v.Initialize(val.Clone(), false)
	*callCtx.OpenNamedReference(name) = context.FromVariable(v)
}
