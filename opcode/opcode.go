// Package opcode enumerates the uniform operator set of §4.7, shared by
// the parser (which tags OperatorExpr nodes), the AIR layer (ApplyOperator
// nodes), and the interpreter (which implements their semantics).
package opcode

type Op int

const (
	IncPost Op = iota
	DecPost
	IncPre
	DecPre
	Subscr
	Pos
	Neg
	NotB
	NotL
	Unset
	Countof
	Typeof
	Sqrt
	Isnan
	Isinf
	Abs
	Sign
	Round
	Floor
	Ceil
	Trunc
	Iround
	Ifloor
	Iceil
	Itrunc
	Lzcnt
	Tzcnt
	Popcnt
	CmpEq
	CmpNe
	CmpLt
	CmpGt
	CmpLte
	CmpGte
	Cmp3way
	CmpUn
	Add
	Sub
	Mul
	Div
	Mod
	Sll
	Srl
	Sla
	Sra
	AndB
	OrB
	XorB
	Fma
	Head
	Tail
	Random
	AddM
	SubM
	MulM
	AddS
	SubS
	MulS
	Assign
	Isvoid
)

// Arity returns how many operands the opcode pops from the operand stack.
func (op Op) Arity() int {
	switch op {
	case Fma:
		return 3
	case Subscr, CmpEq, CmpNe, CmpLt, CmpGt, CmpLte, CmpGte, Cmp3way, CmpUn,
		Add, Sub, Mul, Div, Mod, Sll, Srl, Sla, Sra, AndB, OrB, XorB,
		AddM, SubM, MulM, AddS, SubS, MulS, Assign:
		return 2
	default:
		return 1
	}
}

var names = map[Op]string{
	IncPost: "inc_post", DecPost: "dec_post", IncPre: "inc_pre", DecPre: "dec_pre",
	Subscr: "subscr", Pos: "pos", Neg: "neg", NotB: "notb", NotL: "notl",
	Unset: "unset", Countof: "countof", Typeof: "typeof",
	Sqrt: "sqrt", Isnan: "isnan", Isinf: "isinf", Abs: "abs", Sign: "sign",
	Round: "round", Floor: "floor", Ceil: "ceil", Trunc: "trunc",
	Iround: "iround", Ifloor: "ifloor", Iceil: "iceil", Itrunc: "itrunc",
	Lzcnt: "lzcnt", Tzcnt: "tzcnt", Popcnt: "popcnt",
	CmpEq: "cmp_eq", CmpNe: "cmp_ne", CmpLt: "cmp_lt", CmpGt: "cmp_gt",
	CmpLte: "cmp_lte", CmpGte: "cmp_gte", Cmp3way: "cmp_3way", CmpUn: "cmp_un",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod",
	Sll: "sll", Srl: "srl", Sla: "sla", Sra: "sra",
	AndB: "andb", OrB: "orb", XorB: "xorb", Fma: "fma",
	Head: "head", Tail: "tail", Random: "random",
	AddM: "addm", SubM: "subm", MulM: "mulm",
	AddS: "adds", SubS: "subs", MulS: "muls",
	Assign: "assign", Isvoid: "isvoid",
}

func (op Op) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return "unknown_op"
}
