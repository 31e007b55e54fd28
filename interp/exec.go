package interp

import (
	"fmt"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/value"
)

// Run executes body against ctx and returns the final status. It is the
// entry point used both for a function invocation's top-level body and
// for the embedding API's top-level script body (§4.8, §6.6).
func Run(body []air.Node, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	return execBlock(body, ctx, g)
}

// execBlock runs nodes in order against ctx, stopping at the first node
// that raises an error or yields a non-next status (§4.8: "a block
// propagates the first non-next status").
func execBlock(nodes []air.Node, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	for _, n := range nodes {
		status, rerr := execNode(n, ctx, g)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if status != air.StatusNext {
			return status, nil
		}
	}
	return air.StatusNext, nil
}

// execScope wraps execBlock with a fresh child ExecutiveContext and runs
// deferred expressions on every exit path, error or not (§4.6, §4.8).
func execScope(body []air.Node, parent *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	child := context.NewExecutiveContext(parent, g.Sentry)
	status, rerr := execBlock(body, child, g)
	return leaveScope(child, status, rerr)
}

// leaveScope runs ctx's deferred expressions (§4.8) and translates any
// exception a deferred closure raises into the new in-flight result,
// superseding whatever was propagating before (§8 scenario 2).
func leaveScope(ctx *context.ExecutiveContext, status air.StatusCode, rerr *diag.RuntimeError) (air.StatusCode, *diag.RuntimeError) {
	defer ctx.Close()
	if rerr != nil {
		sup := ctx.OnScopeExitException(rerr)
		return air.StatusNext, asRuntimeError(sup)
	}
	if sup := ctx.OnScopeExitStatus(nil); sup != nil {
		return air.StatusNext, asRuntimeError(sup)
	}
	return status, nil
}

func asRuntimeError(err error) *diag.RuntimeError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*diag.RuntimeError); ok {
		return re
	}
	return diag.NewNativeError(err.Error())
}

func pop(ctx *context.ExecutiveContext) (context.Reference, *diag.RuntimeError) {
	r, err := ctx.OperandStack().Pop()
	if err != nil {
		return context.Reference{}, diag.NewNativeError(err.Error())
	}
	return r, nil
}

func push(ctx *context.ExecutiveContext, r context.Reference) {
	ctx.OperandStack().Push(r)
}

func readTop(ctx *context.ExecutiveContext) (value.Value, *diag.RuntimeError) {
	r, rerr := pop(ctx)
	if rerr != nil {
		return value.Value{}, rerr
	}
	v, err := r.DereferenceReadonly()
	if err != nil {
		return value.Value{}, diag.NewNativeError(err.Error())
	}
	return v, nil
}

// execNode dispatches a single AIR node. Most nodes return StatusNext;
// control-flow nodes may return any other StatusCode.
func execNode(n air.Node, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	switch t := n.(type) {

	case air.ClearStack:
		ctx.OperandStack().Clear()
		return air.StatusNext, nil

	case air.ExecuteBlock:
		return execScope(t.Body, ctx, g)

	case air.DeclareVariable:
		slot := ctx.OpenNamedReference(t.Name)
		*slot = context.FromVariable(g.GC.Allocate())
		if err := g.Hooks.VariableDeclare(t.Sloc, t.Name); err != nil {
			return air.StatusNext, asRuntimeError(err)
		}
		return air.StatusNext, nil

	case air.DefineNullVariable:
		slot := ctx.OpenNamedReference(t.Name)
		v := g.GC.Allocate()
		v.Initialize(value.Null_(), t.Immutable)
		*slot = context.FromVariable(v)
		return air.StatusNext, nil

	case air.InitializeVariable:
		val, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		slot := ctx.OpenNamedReference(t.Name)
		slot.Variable().Initialize(val.Clone(), t.Immutable)
		return air.StatusNext, nil

	case air.IfStmt:
		if status, rerr := execBlock(t.Condition, ctx, g); rerr != nil || status != air.StatusNext {
			return status, rerr
		}
		cond, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		truthy := cond.Truthy()
		if t.Negative {
			truthy = !truthy
		}
		if truthy {
			return execScope(t.TrueBody, ctx, g)
		}
		if t.FalseBody != nil {
			return execScope(t.FalseBody, ctx, g)
		}
		return air.StatusNext, nil

	case air.SwitchStmt:
		return execSwitch(t, ctx, g)

	case air.DoWhileStmt:
		return execDoWhile(t, ctx, g)

	case air.WhileStmt:
		return execWhile(t, ctx, g)

	case air.ForStmt:
		return execFor(t, ctx, g)

	case air.ForEachStmt:
		return execForEach(t, ctx, g)

	case air.TryStmt:
		return execTry(t, ctx, g)

	case air.Throw:
		val, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		re := diag.NewThrow(val)
		re.AppendFrame(diag.FrameFunc, t.Sloc, valueStringer{val})
		return air.StatusNext, re

	case air.Assert:
		val, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		truthy := val.Truthy()
		if t.Negative {
			truthy = !truthy
		}
		if !truthy {
			re := diag.NewAssertFailure(t.Msg)
			re.Payload = value.FromString(t.Msg)
			re.AppendFrame(diag.FrameNative, t.Sloc, valueStringer{value.FromString(t.Msg)})
			return air.StatusNext, re
		}
		return air.StatusNext, nil

	case air.SimpleStatus:
		return t.Status, nil

	case air.CheckArgument:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if !t.ByRef {
			val, err := r.DereferenceReadonly()
			if err != nil {
				return air.StatusNext, diag.NewNativeError(err.Error())
			}
			push(ctx, context.Temporary(val))
		} else {
			push(ctx, r)
		}
		return air.StatusNext, nil

	case air.PushGlobalReference:
		slot, _, ok := g.Root.GetNamedReferenceWithHint(t.Hint, t.Name)
		if !ok {
			return air.StatusNext, diag.NewNativeError("unresolved global name: " + t.Name)
		}
		if slot.Kind() == context.KindInvalid {
			return air.StatusNext, diag.NewNativeError("bypassed variable: " + t.Name)
		}
		push(ctx, *slot)
		return air.StatusNext, nil

	case air.PushLocalReference:
		c := ctx
		for i := 0; i < t.Depth && c != nil; i++ {
			c = c.Parent()
		}
		if c == nil {
			return air.StatusNext, diag.NewNativeError("unresolved local name: " + t.Name)
		}
		slot, _, ok := c.GetNamedReferenceWithHint(t.Hint, t.Name)
		if !ok {
			slot = c.OpenNamedReference(t.Name)
		}
		if slot.Kind() == context.KindInvalid {
			return air.StatusNext, diag.NewNativeError("bypassed variable: " + t.Name)
		}
		push(ctx, *slot)
		return air.StatusNext, nil

	case air.PushBoundReference:
		if t.BoundValue != nil {
			push(ctx, context.Temporary(*t.BoundValue))
		} else {
			push(ctx, context.FromVariable(t.Variable))
		}
		return air.StatusNext, nil

	case air.DefineFunction:
		fn := &userFunction{
			name:     t.QualifiedName,
			params:   t.Params,
			variadic: t.Variadic,
			body:     t.Body,
			captured: ctx,
			global:   g,
		}
		push(ctx, context.Temporary(value.FromFunction(fn)))
		return air.StatusNext, nil

	case air.BranchExpression:
		return execBranch(t, ctx, g)

	case air.Coalescence:
		return execCoalescence(t, ctx, g)

	case air.FunctionCall:
		return execFunctionCall(t, ctx, g)

	case air.VariadicCall:
		return execVariadicCall(t, ctx, g)

	case air.ImportCall:
		return execImportCall(t, ctx, g)

	case air.MemberAccess:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		push(ctx, r.PushModifier(context.ObjectKey(t.Name)))
		return air.StatusNext, nil

	case air.PushUnnamedArray:
		vals := make([]value.Value, t.Nelems)
		for i := t.Nelems - 1; i >= 0; i-- {
			v, rerr := readTop(ctx)
			if rerr != nil {
				return air.StatusNext, rerr
			}
			vals[i] = v
		}
		push(ctx, context.Temporary(value.FromArray(value.NewArray(vals...))))
		return air.StatusNext, nil

	case air.PushUnnamedObject:
		n := len(t.Keys)
		vals := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v, rerr := readTop(ctx)
			if rerr != nil {
				return air.StatusNext, rerr
			}
			vals[i] = v
		}
		push(ctx, context.Temporary(value.FromObject(value.NewObject(t.Keys, vals))))
		return air.StatusNext, nil

	case air.ApplyOperator:
		return execOperator(t, ctx, g)

	case air.UnpackStructArray:
		v, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		arr := v.AsArray()
		for i, name := range t.Names {
			elem := arr.Get(int64(i)).Clone()
			slot := ctx.OpenNamedReference(name)
			slot.Variable().Initialize(elem, t.Immutable)
		}
		return air.StatusNext, nil

	case air.UnpackStructObject:
		v, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		obj := v.AsObject()
		for _, name := range t.Names {
			elem := obj.Get(name).Clone()
			slot := ctx.OpenNamedReference(name)
			slot.Variable().Initialize(elem, t.Immutable)
		}
		return air.StatusNext, nil

	case air.SingleStepTrap:
		if err := g.Hooks.SingleStepTrap(t.Sloc); err != nil {
			return air.StatusNext, asRuntimeError(err)
		}
		return air.StatusNext, nil

	case air.DeferExpression:
		body := t.Body
		ctx.DeferExpression(t.Sloc, func(runCtx *context.ExecutiveContext) error {
			// The deferred body shares the frame stack; whatever it pushes
			// must not bury a return value already sitting there.
			depth := runCtx.OperandStack().Count()
			_, rerr := execBlock(body, runCtx, g)
			runCtx.OperandStack().Truncate(depth)
			if rerr != nil {
				rerr.AppendFrame(diag.FrameDefer, t.Sloc, valueStringer{value.Null_()})
				return rerr
			}
			return nil
		})
		return air.StatusNext, nil

	case air.DeclareReference:
		ctx.OpenNamedReference(t.Name)
		return air.StatusNext, nil

	case air.InitializeReference:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		slot := ctx.OpenNamedReference(t.Name)
		*slot = r
		return air.StatusNext, nil

	case air.CatchExpression:
		status, rerr := execBlock(t.Body, ctx, g)
		if rerr != nil {
			payload := payloadValue(rerr)
			push(ctx, context.Temporary(payload))
			return air.StatusNext, nil
		}
		if status != air.StatusNext {
			return status, nil
		}
		return air.StatusNext, nil

	case air.ReturnValue:
		return air.StatusReturnRef, nil

	case air.PushTemporary:
		push(ctx, context.Temporary(t.Value.Clone()))
		return air.StatusNext, nil

	default:
		return air.StatusNext, diag.NewNativeError(fmt.Sprintf("interp: unhandled AIR node %T", n))
	}
}

func payloadValue(re *diag.RuntimeError) value.Value {
	if v, ok := re.Payload.(value.Value); ok {
		return v
	}
	return value.FromString(re.Error())
}

// valueStringer adapts a value.Value to fmt.Stringer so diag.Frame (which
// cannot import value, see value/function.go's doc comment on Callable)
// can still carry a displayable payload.
type valueStringer struct{ v value.Value }

func (s valueStringer) String() string { return DisplayString(s.v) }
