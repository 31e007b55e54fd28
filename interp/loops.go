package interp

import (
	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/value"
)

// consumeBreak reports whether status is a break this loop kind should
// swallow (§4.8): LoopUnspec (bare `break;`) always targets the innermost
// loop, and Switch for-each loops are matched to the `for` family since
// `for each` is parsed as a `for`-keyword construct.
func consumeBreak(status air.StatusCode, forLoop bool) bool {
	if status == air.StatusBreakUnspec {
		return true
	}
	if forLoop {
		return status == air.StatusBreakFor
	}
	return status == air.StatusBreakWhile
}

func consumeContinue(status air.StatusCode, forLoop bool) bool {
	if status == air.StatusContinueUnspec {
		return true
	}
	if forLoop {
		return status == air.StatusContinueFor
	}
	return status == air.StatusContinueWhile
}

func execDoWhile(s air.DoWhileStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	for {
		status, rerr := execScope(s.Body, ctx, g)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if status != air.StatusNext {
			if consumeBreak(status, false) {
				return air.StatusNext, nil
			}
			if !consumeContinue(status, false) {
				return status, nil
			}
		}
		if status2, rerr2 := execBlock(s.Condition, ctx, g); rerr2 != nil || status2 != air.StatusNext {
			return status2, rerr2
		}
		cond, rerr3 := readTop(ctx)
		if rerr3 != nil {
			return air.StatusNext, rerr3
		}
		truthy := cond.Truthy()
		if s.Negative {
			truthy = !truthy
		}
		if !truthy {
			return air.StatusNext, nil
		}
	}
}

func execWhile(s air.WhileStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	for {
		if status, rerr := execBlock(s.Condition, ctx, g); rerr != nil || status != air.StatusNext {
			return status, rerr
		}
		cond, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		truthy := cond.Truthy()
		if s.Negative {
			truthy = !truthy
		}
		if !truthy {
			return air.StatusNext, nil
		}
		status, rerr := execScope(s.Body, ctx, g)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if status != air.StatusNext {
			if consumeBreak(status, false) {
				return air.StatusNext, nil
			}
			if !consumeContinue(status, false) {
				return status, nil
			}
		}
	}
}

func execFor(s air.ForStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	child := context.NewExecutiveContext(ctx, g.Sentry)
	if status, rerr := execBlock(s.Init, child, g); rerr != nil || status != air.StatusNext {
		return leaveScope(child, status, rerr)
	}
	for {
		if len(s.Cond) > 0 {
			if status, rerr := execBlock(s.Cond, child, g); rerr != nil || status != air.StatusNext {
				return leaveScope(child, status, rerr)
			}
			cond, rerr := readTop(child)
			if rerr != nil {
				return leaveScope(child, air.StatusNext, rerr)
			}
			if !cond.Truthy() {
				return leaveScope(child, air.StatusNext, nil)
			}
		}
		status, rerr := execScope(s.Body, child, g)
		if rerr != nil {
			return leaveScope(child, air.StatusNext, rerr)
		}
		if status != air.StatusNext {
			if consumeBreak(status, true) {
				return leaveScope(child, air.StatusNext, nil)
			}
			if !consumeContinue(status, true) {
				return leaveScope(child, status, nil)
			}
		}
		if status, rerr := execBlock(s.Step, child, g); rerr != nil || status != air.StatusNext {
			return leaveScope(child, status, rerr)
		}
	}
}

func execForEach(s air.ForEachStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	if status, rerr := execBlock(s.Init, ctx, g); rerr != nil || status != air.StatusNext {
		return status, rerr
	}
	src, rerr := readTop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}

	iterate := func(key value.Value, mapped value.Value) (air.StatusCode, *diag.RuntimeError) {
		child := context.NewExecutiveContext(ctx, g.Sentry)
		if s.KeyName != "" {
			kv := g.GC.Allocate()
			kv.Initialize(key, false)
			*child.OpenNamedReference(s.KeyName) = context.FromVariable(kv)
		}
		mv := g.GC.Allocate()
		mv.Initialize(mapped, false)
		*child.OpenNamedReference(s.MappedName) = context.FromVariable(mv)
		status, rerr := execBlock(s.Body, child, g)
		return leaveScope(child, status, rerr)
	}

	switch src.Kind() {
	case value.Array:
		arr := src.AsArray()
		for i, v := range arr.Items() {
			status, rerr := iterate(value.FromInt(int64(i)), v)
			if rerr != nil {
				return air.StatusNext, rerr
			}
			if status != air.StatusNext {
				if consumeBreak(status, true) {
					return air.StatusNext, nil
				}
				if !consumeContinue(status, true) {
					return status, nil
				}
			}
		}
	case value.Object:
		obj := src.AsObject()
		for _, k := range obj.Keys() {
			status, rerr := iterate(value.FromString(k), obj.Get(k))
			if rerr != nil {
				return air.StatusNext, rerr
			}
			if status != air.StatusNext {
				if consumeBreak(status, true) {
					return air.StatusNext, nil
				}
				if !consumeContinue(status, true) {
					return status, nil
				}
			}
		}
	default:
		return air.StatusNext, diag.NewNativeError("for each requires an array or object, got " + src.Kind().String())
	}
	return air.StatusNext, nil
}

func execSwitch(s air.SwitchStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	if status, rerr := execBlock(s.Control, ctx, g); rerr != nil || status != air.StatusNext {
		return status, rerr
	}
	control, rerr := readTop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}

	match := -1
	defaultIdx := -1
	for i, clause := range s.Clauses {
		if clause.IsDefault {
			defaultIdx = i
			continue
		}
		if status, rerr := execBlock(clause.Label, ctx, g); rerr != nil || status != air.StatusNext {
			return status, rerr
		}
		label, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if value.StrictEquals(label, control) {
			match = i
			break
		}
	}
	if match < 0 {
		match = defaultIdx
	}
	if match < 0 {
		return air.StatusNext, nil
	}

	// All clause bodies from the match onward share one context (§4.3).
	shared := context.NewExecutiveContext(ctx, g.Sentry)
	for i := match; i < len(s.Clauses); i++ {
		clause := s.Clauses[i]
		for _, name := range clause.BypassedNames {
			shared.OpenNamedReference(name)
		}
		status, rerr := execBlock(clause.Body, shared, g)
		if rerr != nil {
			return leaveScope(shared, air.StatusNext, rerr)
		}
		if status != air.StatusNext {
			if status == air.StatusBreakSwitch || status == air.StatusBreakUnspec {
				return leaveScope(shared, air.StatusNext, nil)
			}
			return leaveScope(shared, status, nil)
		}
	}
	return leaveScope(shared, air.StatusNext, nil)
}

func execTry(s air.TryStmt, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	status, rerr := execScope(s.TryBody, ctx, g)
	if rerr == nil {
		return status, nil
	}
	rerr.AppendFrame(diag.FrameCatch, s.CatchSloc, valueStringer{payloadValue(rerr)})

	catchCtx := context.NewExecutiveContext(ctx, g.Sentry)
	ev := g.GC.Allocate()
	ev.Initialize(payloadValue(rerr), false)
	*catchCtx.OpenNamedReference(s.ExceptName) = context.FromVariable(ev)

	bv := g.GC.Allocate()
	bv.Initialize(value.FromArray(backtraceArray(rerr)), true)
	*catchCtx.OpenNamedReference("__backtrace") = context.FromVariable(bv)

	cstatus, crerr := execBlock(s.CatchBody, catchCtx, g)
	return leaveScope(catchCtx, cstatus, crerr)
}

func backtraceArray(re *diag.RuntimeError) value.ArrayVal {
	frames := make([]value.Value, len(re.Backtrace))
	for i, f := range re.Backtrace {
		frames[i] = value.FromObject(value.NewObject(
			[]string{"kind", "file", "line", "column", "value"},
			[]value.Value{
				value.FromString(f.Kind.String()),
				value.FromString(f.Loc.File),
				value.FromInt(int64(f.Loc.Line)),
				value.FromInt(int64(f.Loc.Column)),
				value.FromString(f.Value.String()),
			},
		))
	}
	return value.NewArray(frames...)
}
