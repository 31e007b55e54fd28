package interp

import (
	"math"
	"math/bits"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/opcode"
	"github.com/asteria-lang/asteria/value"
)

// execOperator implements the §4.7 operator table. Most ops pop their
// operands by value; a handful (assign, unset, inc/dec) need the popped
// Reference itself to commit a mutation, and subscr/head/tail/random push
// a narrowing Modifier instead of computing a value.
func execOperator(n air.ApplyOperator, ctx *context.ExecutiveContext, g *GlobalContext) (air.StatusCode, *diag.RuntimeError) {
	op := n.Op
	arity := op.Arity()

	switch op {
	case opcode.Subscr:
		idxRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		baseRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		idxVal, err := idxRef.DereferenceReadonly()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		switch idxVal.Kind() {
		case value.Integer:
			push(ctx, baseRef.PushModifier(context.ArrayIndex(idxVal.AsInt())))
		case value.String:
			push(ctx, baseRef.PushModifier(context.ObjectKey(idxVal.AsString())))
		default:
			return air.StatusNext, diag.NewNativeError("subscript must be an integer or string")
		}
		return air.StatusNext, nil

	case opcode.Head:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		push(ctx, r.PushModifier(context.ArrayHead()))
		return air.StatusNext, nil

	case opcode.Tail:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		push(ctx, r.PushModifier(context.ArrayTail()))
		return air.StatusNext, nil

	case opcode.Random:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		val, err := r.DereferenceReadonly()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		length, ok := val.Countof()
		if !ok || length == 0 {
			return air.StatusNext, diag.NewNativeError("random requires a non-empty countable value")
		}
		idx := g.RNG.Int63n(length)
		push(ctx, r.PushModifier(context.ArrayRandom(idx)))
		return air.StatusNext, nil

	case opcode.Unset:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		if err := r.DereferenceUnset(); err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		push(ctx, context.Temporary(value.Null_()))
		return air.StatusNext, nil

	case opcode.Assign:
		rhsRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		lhsRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		rhs, err := rhsRef.DereferenceReadonly()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		_, setter, err := lhsRef.DereferenceMutable()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		if err := setter(rhs.Clone()); err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		push(ctx, context.Temporary(rhs))
		return air.StatusNext, nil

	case opcode.IncPost, opcode.DecPost, opcode.IncPre, opcode.DecPre:
		return execIncDec(op, ctx)

	case opcode.Isvoid:
		r, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		push(ctx, context.Temporary(value.FromBool(r.Kind() == context.KindVoid)))
		return air.StatusNext, nil

	case opcode.Typeof:
		v, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		push(ctx, context.Temporary(value.FromString(v.Kind().String())))
		return air.StatusNext, nil

	case opcode.Countof:
		v, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		n, ok := v.Countof()
		if !ok {
			return air.StatusNext, diag.NewNativeError("countof is undefined for " + v.Kind().String())
		}
		push(ctx, context.Temporary(value.FromInt(n)))
		return air.StatusNext, nil
	}

	if arity == 1 {
		v, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		result, err := applyUnary(op, v)
		if err != nil {
			return air.StatusNext, err
		}
		push(ctx, context.Temporary(result))
		return air.StatusNext, nil
	}

	if op == opcode.Fma {
		cVal, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		bVal, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		aVal, rerr := readTop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		result, err := applyFma(aVal, bVal, cVal)
		if err != nil {
			return air.StatusNext, err
		}
		push(ctx, context.Temporary(result))
		return air.StatusNext, nil
	}

	// Binary ops: when Assign, the left operand's own Reference is kept
	// so the result can be committed back through it (compound assignment
	// spellings like `+=`); otherwise both sides are read by value.
	if n.Assign {
		rhsRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		lhsRef, rerr := pop(ctx)
		if rerr != nil {
			return air.StatusNext, rerr
		}
		rhs, err := rhsRef.DereferenceReadonly()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		lhs, setter, err := lhsRef.DereferenceMutable()
		if err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		result, rerr2 := applyBinary(op, lhs, rhs)
		if rerr2 != nil {
			return air.StatusNext, rerr2
		}
		if err := setter(result); err != nil {
			return air.StatusNext, diag.NewNativeError(err.Error())
		}
		push(ctx, context.Temporary(result))
		return air.StatusNext, nil
	}

	rhs, rerr := readTop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	lhs, rerr := readTop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	result, rerr2 := applyBinary(op, lhs, rhs)
	if rerr2 != nil {
		return air.StatusNext, rerr2
	}
	push(ctx, context.Temporary(result))
	return air.StatusNext, nil
}

func execIncDec(op opcode.Op, ctx *context.ExecutiveContext) (air.StatusCode, *diag.RuntimeError) {
	r, rerr := pop(ctx)
	if rerr != nil {
		return air.StatusNext, rerr
	}
	cur, setter, err := r.DereferenceMutable()
	if err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	delta := int64(1)
	if op == opcode.DecPost || op == opcode.DecPre {
		delta = -1
	}
	var updated value.Value
	switch cur.Kind() {
	case value.Integer:
		sum, overflow := addOverflow(cur.AsInt(), delta)
		if overflow {
			return air.StatusNext, diag.NewNativeError("integer overflow")
		}
		updated = value.FromInt(sum)
	case value.Real:
		updated = value.FromReal(cur.AsReal() + float64(delta))
	default:
		return air.StatusNext, diag.NewNativeError("inc/dec requires an integer or real operand")
	}
	if err := setter(updated); err != nil {
		return air.StatusNext, diag.NewNativeError(err.Error())
	}
	if op == opcode.IncPost || op == opcode.DecPost {
		push(ctx, context.Temporary(cur))
	} else {
		push(ctx, context.Temporary(updated))
	}
	return air.StatusNext, nil
}

func applyUnary(op opcode.Op, v value.Value) (value.Value, *diag.RuntimeError) {
	switch op {
	case opcode.Pos:
		// No-op over any type.
		return v, nil
	case opcode.Neg:
		switch v.Kind() {
		case value.Integer:
			if v.AsInt() == math.MinInt64 {
				return value.Value{}, diag.NewNativeError("integer overflow negating INT64_MIN")
			}
			return value.FromInt(-v.AsInt()), nil
		case value.Real:
			return value.FromReal(-v.AsReal()), nil
		}
		return value.Value{}, diag.NewNativeError("neg requires a numeric operand")
	case opcode.NotB:
		switch v.Kind() {
		case value.Integer:
			return value.FromInt(^v.AsInt()), nil
		case value.Boolean:
			return value.FromBool(!v.AsBool()), nil
		case value.String:
			s := v.AsString()
			out := make([]byte, len(s))
			for i := 0; i < len(s); i++ {
				out[i] = ^s[i]
			}
			return value.FromString(string(out)), nil
		}
		return value.Value{}, diag.NewNativeError("notb requires an integer, boolean, or string operand")
	case opcode.NotL:
		return value.FromBool(!v.Truthy()), nil
	case opcode.Sqrt, opcode.Isnan, opcode.Isinf, opcode.Round, opcode.Floor,
		opcode.Ceil, opcode.Trunc, opcode.Iround, opcode.Ifloor, opcode.Iceil,
		opcode.Itrunc:
		if !isNumeric(v) {
			return value.Value{}, diag.NewNativeError(op.String() + " requires a numeric operand")
		}
		return applyNumericUnary(op, asReal(v))
	case opcode.Abs:
		if v.Kind() == value.Integer {
			if v.AsInt() == math.MinInt64 {
				return value.Value{}, diag.NewNativeError("integer overflow in abs(INT64_MIN)")
			}
			if v.AsInt() < 0 {
				return value.FromInt(-v.AsInt()), nil
			}
			return v, nil
		}
		if v.Kind() != value.Real {
			return value.Value{}, diag.NewNativeError("abs requires a numeric operand")
		}
		return value.FromReal(math.Abs(v.AsReal())), nil
	case opcode.Sign:
		if v.Kind() == value.Integer {
			i := v.AsInt()
			switch {
			case i > 0:
				return value.FromInt(1), nil
			case i < 0:
				return value.FromInt(-1), nil
			default:
				return value.FromInt(0), nil
			}
		}
		if v.Kind() != value.Real {
			return value.Value{}, diag.NewNativeError("sign requires a numeric operand")
		}
		f := v.AsReal()
		switch {
		case f > 0:
			return value.FromReal(1), nil
		case f < 0:
			return value.FromReal(-1), nil
		default:
			return value.FromReal(f), nil
		}
	case opcode.Lzcnt:
		if v.Kind() != value.Integer {
			return value.Value{}, diag.NewNativeError("lzcnt requires an integer operand")
		}
		return value.FromInt(int64(bits.LeadingZeros64(uint64(v.AsInt())))), nil
	case opcode.Tzcnt:
		if v.Kind() != value.Integer {
			return value.Value{}, diag.NewNativeError("tzcnt requires an integer operand")
		}
		return value.FromInt(int64(bits.TrailingZeros64(uint64(v.AsInt())))), nil
	case opcode.Popcnt:
		if v.Kind() != value.Integer {
			return value.Value{}, diag.NewNativeError("popcnt requires an integer operand")
		}
		return value.FromInt(int64(bits.OnesCount64(uint64(v.AsInt())))), nil
	}
	return value.Value{}, diag.NewNativeError("unsupported unary operator " + op.String())
}

func applyNumericUnary(op opcode.Op, f float64) (value.Value, *diag.RuntimeError) {
	switch op {
	case opcode.Sqrt:
		return value.FromReal(math.Sqrt(f)), nil
	case opcode.Isnan:
		return value.FromBool(math.IsNaN(f)), nil
	case opcode.Isinf:
		return value.FromBool(math.IsInf(f, 0)), nil
	case opcode.Round:
		return value.FromReal(math.Round(f)), nil
	case opcode.Floor:
		return value.FromReal(math.Floor(f)), nil
	case opcode.Ceil:
		return value.FromReal(math.Ceil(f)), nil
	case opcode.Trunc:
		return value.FromReal(math.Trunc(f)), nil
	case opcode.Iround:
		return intFromFloat(math.Round(f))
	case opcode.Ifloor:
		return intFromFloat(math.Floor(f))
	case opcode.Iceil:
		return intFromFloat(math.Ceil(f))
	case opcode.Itrunc:
		return intFromFloat(math.Trunc(f))
	}
	return value.Value{}, diag.NewNativeError("unsupported unary operator " + op.String())
}

func intFromFloat(f float64) (value.Value, *diag.RuntimeError) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return value.Value{}, diag.NewNativeError("real-to-integer conversion out of range")
	}
	return value.FromInt(int64(f)), nil
}

func asReal(v value.Value) float64 {
	if v.Kind() == value.Integer {
		return float64(v.AsInt())
	}
	return v.AsReal()
}

func applyFma(a, b, c value.Value) (value.Value, *diag.RuntimeError) {
	if !isNumeric(a) || !isNumeric(b) || !isNumeric(c) {
		return value.Value{}, diag.NewNativeError("fma requires numeric operands")
	}
	return value.FromReal(math.FMA(asReal(a), asReal(b), asReal(c))), nil
}

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, true
	}
	return sum, false
}

func subOverflow(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, true
	}
	return diff, false
}

func mulOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	if a == math.MinInt64 && b == -1 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, true
	}
	return p, false
}

func applyBinary(op opcode.Op, lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	switch op {
	case opcode.CmpEq:
		return value.FromBool(compareEquals(lhs, rhs)), nil
	case opcode.CmpNe:
		return value.FromBool(!compareEquals(lhs, rhs)), nil
	case opcode.CmpLt:
		o, rerr := orderedCompare(op, lhs, rhs)
		if rerr != nil {
			return value.Value{}, rerr
		}
		return value.FromBool(o == value.Less), nil
	case opcode.CmpGt:
		o, rerr := orderedCompare(op, lhs, rhs)
		if rerr != nil {
			return value.Value{}, rerr
		}
		return value.FromBool(o == value.Greater), nil
	case opcode.CmpLte:
		o, rerr := orderedCompare(op, lhs, rhs)
		if rerr != nil {
			return value.Value{}, rerr
		}
		return value.FromBool(o == value.Less || o == value.Equal), nil
	case opcode.CmpGte:
		o, rerr := orderedCompare(op, lhs, rhs)
		if rerr != nil {
			return value.Value{}, rerr
		}
		return value.FromBool(o == value.Greater || o == value.Equal), nil
	case opcode.Cmp3way:
		o := value.Compare(lhs, rhs)
		if o == value.Unordered {
			return value.FromString("[unordered]"), nil
		}
		return value.FromInt(int64(o)), nil
	case opcode.CmpUn:
		return value.FromBool(value.Compare(lhs, rhs) == value.Unordered), nil
	case opcode.Add:
		return applyAdd(lhs, rhs)
	case opcode.Sub:
		return applySub(lhs, rhs)
	case opcode.Mul:
		return applyMul(lhs, rhs)
	case opcode.Div:
		return applyDiv(lhs, rhs)
	case opcode.Mod:
		return applyMod(lhs, rhs)
	case opcode.Sll, opcode.Srl, opcode.Sla, opcode.Sra:
		return applyShift(op, lhs, rhs)
	case opcode.AndB, opcode.OrB, opcode.XorB:
		return applyBitwise(op, lhs, rhs)
	case opcode.AddM, opcode.SubM, opcode.MulM:
		return applyModular(op, lhs, rhs)
	case opcode.AddS, opcode.SubS, opcode.MulS:
		return applySaturating(op, lhs, rhs)
	}
	return value.Value{}, diag.NewNativeError("unsupported binary operator " + op.String())
}

// orderedCompare implements the <, >, <=, >= family: unlike equality,
// an unordered pair is a runtime error here (§4.7).
func orderedCompare(op opcode.Op, lhs, rhs value.Value) (value.Ordering, *diag.RuntimeError) {
	o := value.Compare(lhs, rhs)
	if o == value.Unordered {
		return o, diag.NewNativeError("values are unordered in " + op.String())
	}
	return o, nil
}

func compareEquals(a, b value.Value) bool {
	switch a.Kind() {
	case value.Object, value.Opaque, value.Function:
		return value.StrictEquals(a, b)
	default:
		return value.Compare(a, b) == value.Equal
	}
}

func applyAdd(lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	switch {
	case lhs.Kind() == value.Integer && rhs.Kind() == value.Integer:
		sum, overflow := addOverflow(lhs.AsInt(), rhs.AsInt())
		if overflow {
			return value.Value{}, diag.NewNativeError("integer overflow in add")
		}
		return value.FromInt(sum), nil
	case lhs.Kind() == value.Real || rhs.Kind() == value.Real:
		if !isNumeric(lhs) || !isNumeric(rhs) {
			break
		}
		return value.FromReal(asReal(lhs) + asReal(rhs)), nil
	case lhs.Kind() == value.Boolean && rhs.Kind() == value.Boolean:
		return value.FromBool(lhs.AsBool() || rhs.AsBool()), nil
	case lhs.Kind() == value.String && rhs.Kind() == value.String:
		return value.FromString(lhs.AsString() + rhs.AsString()), nil
	}
	return value.Value{}, diag.NewNativeError("add requires matching numeric, boolean, or string operands")
}

func applySub(lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	switch {
	case lhs.Kind() == value.Integer && rhs.Kind() == value.Integer:
		diff, overflow := subOverflow(lhs.AsInt(), rhs.AsInt())
		if overflow {
			return value.Value{}, diag.NewNativeError("integer overflow in sub")
		}
		return value.FromInt(diff), nil
	case lhs.Kind() == value.Real || rhs.Kind() == value.Real:
		if !isNumeric(lhs) || !isNumeric(rhs) {
			break
		}
		return value.FromReal(asReal(lhs) - asReal(rhs)), nil
	case lhs.Kind() == value.Boolean && rhs.Kind() == value.Boolean:
		return value.FromBool(lhs.AsBool() != rhs.AsBool()), nil
	}
	return value.Value{}, diag.NewNativeError("sub requires matching numeric or boolean operands")
}

func applyMul(lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	switch {
	case lhs.Kind() == value.Integer && rhs.Kind() == value.Integer:
		prod, overflow := mulOverflow(lhs.AsInt(), rhs.AsInt())
		if overflow {
			return value.Value{}, diag.NewNativeError("integer overflow in mul")
		}
		return value.FromInt(prod), nil
	case lhs.Kind() == value.Real || rhs.Kind() == value.Real:
		if !isNumeric(lhs) || !isNumeric(rhs) {
			break
		}
		return value.FromReal(asReal(lhs) * asReal(rhs)), nil
	case lhs.Kind() == value.Boolean && rhs.Kind() == value.Boolean:
		return value.FromBool(lhs.AsBool() && rhs.AsBool()), nil
	case lhs.Kind() == value.String && rhs.Kind() == value.Integer:
		return repeatString(lhs.AsString(), rhs.AsInt())
	case lhs.Kind() == value.Integer && rhs.Kind() == value.String:
		return repeatString(rhs.AsString(), lhs.AsInt())
	}
	return value.Value{}, diag.NewNativeError("mul requires matching numeric or boolean operands, or a string repeated by an integer")
}

func repeatString(s string, n int64) (value.Value, *diag.RuntimeError) {
	if n < 0 {
		return value.Value{}, diag.NewNativeError("string repeat count must not be negative")
	}
	if n > 0 && int64(len(s)) > maxStringLen/n {
		return value.Value{}, diag.NewNativeError("string length overflow in mul")
	}
	out := make([]byte, 0, int64(len(s))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return value.FromString(string(out)), nil
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.Integer || v.Kind() == value.Real
}

func applyDiv(lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if lhs.Kind() == value.Integer && rhs.Kind() == value.Integer {
		a, b := lhs.AsInt(), rhs.AsInt()
		if b == 0 {
			return value.Value{}, diag.NewNativeError("division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return value.Value{}, diag.NewNativeError("integer overflow in div")
		}
		return value.FromInt(a / b), nil
	}
	if isNumeric(lhs) && isNumeric(rhs) {
		return value.FromReal(asReal(lhs) / asReal(rhs)), nil
	}
	return value.Value{}, diag.NewNativeError("div requires numeric operands")
}

func applyMod(lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if lhs.Kind() == value.Integer && rhs.Kind() == value.Integer {
		a, b := lhs.AsInt(), rhs.AsInt()
		if b == 0 {
			return value.Value{}, diag.NewNativeError("modulo by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return value.Value{}, diag.NewNativeError("integer overflow in mod")
		}
		return value.FromInt(a % b), nil
	}
	if isNumeric(lhs) && isNumeric(rhs) {
		return value.FromReal(math.Mod(asReal(lhs), asReal(rhs))), nil
	}
	return value.Value{}, diag.NewNativeError("mod requires numeric operands")
}

// applyShift implements sll/srl (logical, unsigned semantics) and
// sla/sra (arithmetic, sign-extending) on integers, plus the string
// forms described in §4.7, which pad or truncate with spaces (see
// shiftString).
func applyShift(op opcode.Op, lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if rhs.Kind() != value.Integer {
		return value.Value{}, diag.NewNativeError("shift count must be an integer")
	}
	count := rhs.AsInt()
	if count < 0 {
		return value.Value{}, diag.NewNativeError("shift count must not be negative")
	}
	switch lhs.Kind() {
	case value.Integer:
		u := uint64(lhs.AsInt())
		if count >= 64 {
			switch op {
			case opcode.Sll, opcode.Srl:
				return value.FromInt(0), nil
			case opcode.Sla, opcode.Sra:
				return value.Value{}, diag.NewNativeError("arithmetic shift count out of range")
			}
		}
		switch op {
		case opcode.Sll:
			return value.FromInt(int64(u << uint(count))), nil
		case opcode.Srl:
			return value.FromInt(int64(u >> uint(count))), nil
		case opcode.Sla:
			i := lhs.AsInt()
			shifted := i << uint(count)
			if shifted>>uint(count) != i {
				return value.Value{}, diag.NewNativeError("arithmetic shift overflow")
			}
			return value.FromInt(shifted), nil
		case opcode.Sra:
			return value.FromInt(lhs.AsInt() >> uint(count)), nil
		}
	case value.String:
		return shiftString(op, lhs.AsString(), count)
	}
	return value.Value{}, diag.NewNativeError("shift requires an integer or string left operand")
}

const maxStringLen = int64(1) << 48

// shiftString implements the string forms of §4.7: the logical shifts
// keep the length constant, padding with ASCII spaces on the vacated
// side; sla appends trailing spaces (growing, length-checked) and sra
// truncates from the right.
func shiftString(op opcode.Op, s string, count int64) (value.Value, *diag.RuntimeError) {
	n := int64(len(s))
	switch op {
	case opcode.Sll:
		if count >= n {
			return value.FromString(spaces(n)), nil
		}
		return value.FromString(s[count:] + spaces(count)), nil
	case opcode.Srl:
		if count >= n {
			return value.FromString(spaces(n)), nil
		}
		return value.FromString(spaces(count) + s[:n-count]), nil
	case opcode.Sla:
		if count > maxStringLen-n {
			return value.Value{}, diag.NewNativeError("string length overflow in sla")
		}
		return value.FromString(s + spaces(count)), nil
	case opcode.Sra:
		if count >= n {
			return value.FromString(""), nil
		}
		return value.FromString(s[:n-count]), nil
	}
	return value.Value{}, diag.NewNativeError("unreachable")
}

func spaces(n int64) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

func applyBitwise(op opcode.Op, lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if lhs.Kind() == value.Integer && rhs.Kind() == value.Integer {
		a, b := lhs.AsInt(), rhs.AsInt()
		switch op {
		case opcode.AndB:
			return value.FromInt(a & b), nil
		case opcode.OrB:
			return value.FromInt(a | b), nil
		case opcode.XorB:
			return value.FromInt(a ^ b), nil
		}
	}
	if lhs.Kind() == value.Boolean && rhs.Kind() == value.Boolean {
		switch op {
		case opcode.AndB:
			return value.FromBool(lhs.AsBool() && rhs.AsBool()), nil
		case opcode.OrB:
			return value.FromBool(lhs.AsBool() || rhs.AsBool()), nil
		case opcode.XorB:
			return value.FromBool(lhs.AsBool() != rhs.AsBool()), nil
		}
	}
	if lhs.Kind() == value.String && rhs.Kind() == value.String {
		return bitwiseStrings(op, lhs.AsString(), rhs.AsString()), nil
	}
	return value.Value{}, diag.NewNativeError("bitwise op requires matching integer, boolean, or string operands")
}

// bitwiseStrings implements the byte-wise string forms of andb/orb/xorb
// (§4.7): andb/xorb truncate to the shorter operand's length, orb extends
// to the longer (missing bytes from the shorter treated as 0x00).
func bitwiseStrings(op opcode.Op, a, b string) value.Value {
	if op == opcode.OrB {
		n := len(a)
		if len(b) > n {
			n = len(b)
		}
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			var x, y byte
			if i < len(a) {
				x = a[i]
			}
			if i < len(b) {
				y = b[i]
			}
			out[i] = x | y
		}
		return value.FromString(string(out))
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		switch op {
		case opcode.AndB:
			out[i] = a[i] & b[i]
		case opcode.XorB:
			out[i] = a[i] ^ b[i]
		}
	}
	return value.FromString(string(out))
}

// applyModular implements addm/subm/mulm: wraparound (twos-complement)
// integer arithmetic with no overflow error, the non-saturating sibling
// of add/sub/mul's checked arithmetic (§4.7).
func applyModular(op opcode.Op, lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if lhs.Kind() != value.Integer || rhs.Kind() != value.Integer {
		return value.Value{}, diag.NewNativeError("modular arithmetic requires integer operands")
	}
	a, b := uint64(lhs.AsInt()), uint64(rhs.AsInt())
	switch op {
	case opcode.AddM:
		return value.FromInt(int64(a + b)), nil
	case opcode.SubM:
		return value.FromInt(int64(a - b)), nil
	case opcode.MulM:
		return value.FromInt(int64(a * b)), nil
	}
	return value.Value{}, diag.NewNativeError("unreachable")
}

// applySaturating implements adds/subs/muls: clamp to INT64_MIN/MAX
// instead of overflowing (§4.7).
func applySaturating(op opcode.Op, lhs, rhs value.Value) (value.Value, *diag.RuntimeError) {
	if lhs.Kind() != value.Integer || rhs.Kind() != value.Integer {
		return value.Value{}, diag.NewNativeError("saturating arithmetic requires integer operands")
	}
	a, b := lhs.AsInt(), rhs.AsInt()
	switch op {
	case opcode.AddS:
		sum, overflow := addOverflow(a, b)
		if !overflow {
			return value.FromInt(sum), nil
		}
		if b > 0 {
			return value.FromInt(math.MaxInt64), nil
		}
		return value.FromInt(math.MinInt64), nil
	case opcode.SubS:
		diff, overflow := subOverflow(a, b)
		if !overflow {
			return value.FromInt(diff), nil
		}
		if b < 0 {
			return value.FromInt(math.MaxInt64), nil
		}
		return value.FromInt(math.MinInt64), nil
	case opcode.MulS:
		prod, overflow := mulOverflow(a, b)
		if !overflow {
			return value.FromInt(prod), nil
		}
		if (a > 0) == (b > 0) {
			return value.FromInt(math.MaxInt64), nil
		}
		return value.FromInt(math.MinInt64), nil
	}
	return value.Value{}, diag.NewNativeError("unreachable")
}
