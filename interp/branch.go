package interp

import (
	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/value"
)

// execBranch implements the ternary `cond ? a : b` / compound-assign
// `cond ?= a : b` construct (§3.5's BranchExpression doc comment): it
// pops the condition's reference itself; the chosen arm runs directly in
// ctx (no new lexical scope), and when Assign is set its result is
// additionally written back through that condition reference.
func execBranch(t air.BranchExpression, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	condRef, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	cond, err := condRef.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	body := t.FalseBody
	if cond.Truthy() {
		body = t.TrueBody
	}
	status, berr := execBlock(body, ctx, g)
	if berr != nil {
		return air.StatusNext, berr
	}
	if status != air.StatusNext {
		return status, nil
	}
	if !t.Assign {
		return air.StatusNext, nil
	}
	// Compound spelling: the chosen arm's result is committed back
	// through the condition's own lvalue.
	result, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	val, err := result.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	_, setter, err := condRef.DereferenceMutable()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if err := setter(val.Clone()); err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	push(ctx, context.Temporary(val))
	return air.StatusNext, nil
}

// execCoalescence implements `??`/`??=`: NullBody only runs when the
// preceding value is null; when Assign, the null-fallback result is also
// committed back through the popped reference (the left-hand lvalue).
func execCoalescence(t air.Coalescence, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	top, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	val, err := top.DereferenceReadonly()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if val.Kind() != value.Null {
		push(ctx, context.Temporary(val))
		return air.StatusNext, nil
	}
	status, berr := execBlock(t.NullBody, ctx, g)
	if berr != nil {
		return air.StatusNext, berr
	}
	if status != air.StatusNext {
		return status, nil
	}
	fallback, rerr := readTop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	if t.Assign {
		_, setter, err := top.DereferenceMutable()
		if err == nil {
			_ = setter(fallback)
		}
	}
	push(ctx, context.Temporary(fallback))
	return air.StatusNext, nil
}
