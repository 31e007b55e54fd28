package air

import (
	"fmt"

	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/syntax"
	"github.com/asteria-lang/asteria/value"
)

// genState threads the compiler options and the "are we inside a try
// body" flag through code generation (§4.3, §4.9): a call generated while
// insideTry is true is never marked for proper tail calls, because PTC
// discards the caller's frame and the exception it might raise would
// never reach the enclosing try/catch (§4.9, §9 "Open question — PTC
// interaction with try", resolved in DESIGN.md: catch bodies are not
// restricted, matching the original compiler).
type genState struct {
	opts      options.Compiler
	insideTry bool
}

// GenerateStatements lowers a whole top-level statement sequence (used
// for a full script and for one `reload`, §6.6) against a fresh root
// analytic scope. The top level executes as a variadic function whose
// sole parameter is `...` (§6.6), so that name is always in scope here.
func GenerateStatements(stmts []syntax.Statement, actx *context.AnalyticContext, opts options.Compiler) ([]Node, error) {
	actx.Declare("...")
	return generateStatements(stmts, actx, genState{opts: opts})
}

func generateStatements(stmts []syntax.Statement, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	var out []Node
	for _, s := range stmts {
		if gs.opts.VerboseSingleStepTraps {
			out = append(out, SingleStepTrap{newBase(s.Loc())})
		}
		nodes, err := generateStatement(s, actx, gs)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func tailMode(gs genState) context.PtcMode {
	if !gs.opts.ProperTailCalls || gs.insideTry {
		return context.PtcNone
	}
	return context.PtcByVal
}

func generateStatement(stmt syntax.Statement, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	switch s := stmt.(type) {
	case *syntax.ExprStmt:
		nodes, err := generateExprSeq(s.Expr, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		return append([]Node{ClearStack{newBase(s.Loc())}}, nodes...), nil

	case *syntax.BlockStmt:
		child := context.NewAnalyticContext(actx, false)
		body, err := generateStatements(s.Body, child, gs)
		if err != nil {
			return nil, err
		}
		return []Node{ExecuteBlock{base: newBase(s.Loc()), Body: body}}, nil

	case *syntax.VarGroupStmt:
		return generateVarGroup(s, actx, gs)

	case *syntax.FuncDeclStmt:
		return generateFuncDecl(s, actx, gs)

	case *syntax.IfStmt:
		return generateIf(s, actx, gs)

	case *syntax.SwitchStmt:
		return generateSwitch(s, actx, gs)

	case *syntax.DoWhileStmt:
		// The body runs in its own nested scope; the condition is
		// evaluated back in the enclosing one, so it is generated against
		// actx to keep compile-time depths aligned with the run-time
		// context chain.
		child := context.NewAnalyticContext(actx, false)
		body, err := generateStatements(s.Body, child, gs)
		if err != nil {
			return nil, err
		}
		cond, err := generateExprSeq(s.Condition, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		return []Node{DoWhileStmt{base: newBase(s.Loc()), Body: body, Negative: s.Negative, Condition: cond}}, nil

	case *syntax.WhileStmt:
		cond, err := generateExprSeq(s.Condition, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		child := context.NewAnalyticContext(actx, false)
		body, err := generateStatements(s.Body, child, gs)
		if err != nil {
			return nil, err
		}
		return []Node{WhileStmt{base: newBase(s.Loc()), Negative: s.Negative, Condition: cond, Body: body}}, nil

	case *syntax.ForEachStmt:
		child := context.NewAnalyticContext(actx, false)
		if s.KeyName != "" {
			child.Declare(s.KeyName)
		}
		child.Declare(s.MappedName)
		init, err := generateExprSeq(s.Range, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		body, err := generateStatements(s.Body, child, gs)
		if err != nil {
			return nil, err
		}
		return []Node{ForEachStmt{
			base: newBase(s.Loc()), KeyName: s.KeyName, MappedName: s.MappedName, Init: init, Body: body,
		}}, nil

	case *syntax.ForStmt:
		child := context.NewAnalyticContext(actx, false)
		var init []Node
		var err error
		if s.Init != nil {
			init, err = generateStatement(s.Init, child, gs)
			if err != nil {
				return nil, err
			}
		}
		cond, err := generateExprSeq(s.Cond, child, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		step, err := generateExprSeq(s.Step, child, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		// The body runs one scope below the init/cond/step scope (each
		// iteration gets a fresh child context).
		bodyActx := context.NewAnalyticContext(child, false)
		body, err := generateStatements(s.Body, bodyActx, gs)
		if err != nil {
			return nil, err
		}
		return []Node{ForStmt{base: newBase(s.Loc()), Init: init, Cond: cond, Step: step, Body: body}}, nil

	case *syntax.TryStmt:
		return generateTry(s, actx, gs)

	case *syntax.BreakStmt:
		return []Node{SimpleStatus{base: newBase(s.Loc()), Status: breakStatus(s.Target)}}, nil

	case *syntax.ContinueStmt:
		return []Node{SimpleStatus{base: newBase(s.Loc()), Status: continueStatus(s.Target)}}, nil

	case *syntax.ThrowStmt:
		exprNodes, err := generateExprSeq(s.Expr, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		return append(exprNodes, Throw{newBase(s.Loc())}), nil

	case *syntax.ReturnStmt:
		return generateReturn(s, actx, gs)

	case *syntax.AssertStmt:
		cond, err := generateExprSeq(s.Condition, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		return append(cond, Assert{base: newBase(s.Loc()), Msg: s.Message}), nil

	case *syntax.DeferStmt:
		body, err := generateExprSeq(s.Expr, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		if s.Throws {
			body = append(body, Throw{newBase(s.Loc())})
		}
		return []Node{DeferExpression{base: newBase(s.Loc()), Body: body}}, nil

	case *syntax.RefGroupStmt:
		actx.Declare(s.Name)
		refNodes, err := generateExprSeq(s.Ref, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		out := []Node{DeclareReference{base: newBase(s.Loc()), Name: s.Name}}
		out = append(out, refNodes...)
		out = append(out, InitializeReference{base: newBase(s.Loc()), Name: s.Name})
		return out, nil

	default:
		return nil, fmt.Errorf("air: unhandled statement type %T", stmt)
	}
}

func breakStatus(k syntax.LoopKind) StatusCode {
	switch k {
	case syntax.LoopSwitch:
		return StatusBreakSwitch
	case syntax.LoopWhile:
		return StatusBreakWhile
	case syntax.LoopFor:
		return StatusBreakFor
	default:
		return StatusBreakUnspec
	}
}

func continueStatus(k syntax.LoopKind) StatusCode {
	switch k {
	case syntax.LoopWhile:
		return StatusContinueWhile
	case syntax.LoopFor:
		return StatusContinueFor
	default:
		return StatusContinueUnspec
	}
}

func generateVarGroup(s *syntax.VarGroupStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	var out []Node
	for i, d := range s.Declarators {
		init := s.Initializers[i]
		switch {
		case d.IsArrayBinding:
			for _, n := range d.Names {
				actx.Declare(n)
				out = append(out, DeclareVariable{base: newBase(d.Sloc), Name: n})
			}
			initNodes, err := generateInitializerOrNull(init, actx, gs, d.Sloc)
			if err != nil {
				return nil, err
			}
			out = append(out, initNodes...)
			out = append(out, UnpackStructArray{base: newBase(d.Sloc), Immutable: s.Immutable, Names: d.Names})
		case d.IsObjectBinding:
			for _, n := range d.Names {
				actx.Declare(n)
				out = append(out, DeclareVariable{base: newBase(d.Sloc), Name: n})
			}
			initNodes, err := generateInitializerOrNull(init, actx, gs, d.Sloc)
			if err != nil {
				return nil, err
			}
			out = append(out, initNodes...)
			out = append(out, UnpackStructObject{base: newBase(d.Sloc), Immutable: s.Immutable, Names: d.Names})
		default:
			actx.Declare(d.Name)
			out = append(out, DeclareVariable{base: newBase(d.Sloc), Name: d.Name})
			if len(init) == 0 {
				out = append(out, DefineNullVariable{base: newBase(d.Sloc), Immutable: s.Immutable, Name: d.Name})
				continue
			}
			initNodes, err := generateExprSeq(init, actx, gs, context.PtcNone)
			if err != nil {
				return nil, err
			}
			out = append(out, initNodes...)
			out = append(out, InitializeVariable{base: newBase(d.Sloc), Immutable: s.Immutable, Name: d.Name})
		}
	}
	return out, nil
}

// generateInitializerOrNull lowers a structured binding's initializer,
// substituting a null temporary when the declaration omitted one so the
// following UnpackStruct* node always has a value to consume.
func generateInitializerOrNull(init []syntax.Expr, actx *context.AnalyticContext, gs genState, sloc diag.Loc) ([]Node, error) {
	if len(init) == 0 {
		return []Node{PushTemporary{base: newBase(sloc), Value: value.Null_()}}, nil
	}
	return generateExprSeq(init, actx, gs, context.PtcNone)
}

func generateFuncDecl(s *syntax.FuncDeclStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	actx.Declare(s.Name)
	out := []Node{DeclareVariable{base: newBase(s.Loc()), Name: s.Name}}

	fnActx := context.NewAnalyticContext(actx, true)
	for _, p := range s.Params {
		fnActx.Declare(p)
	}
	if s.Variadic {
		fnActx.Declare("...")
	}
	body, err := generateStatements(s.Body, fnActx, genState{opts: gs.opts, insideTry: false})
	if err != nil {
		return nil, err
	}
	out = append(out, DefineFunction{
		base: newBase(s.Loc()), QualifiedName: s.Name, Params: s.Params, Variadic: s.Variadic, Body: body,
	})
	out = append(out, InitializeVariable{base: newBase(s.Loc()), Immutable: true, Name: s.Name})
	return out, nil
}

func generateIf(s *syntax.IfStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	cond, err := generateExprSeq(s.Condition, actx, gs, context.PtcNone)
	if err != nil {
		return nil, err
	}
	trueActx := context.NewAnalyticContext(actx, false)
	trueBody, err := generateStatements(s.TrueBranch, trueActx, gs)
	if err != nil {
		return nil, err
	}
	var falseBody []Node
	if s.FalseBranch != nil {
		falseActx := context.NewAnalyticContext(actx, false)
		falseBody, err = generateStatements(s.FalseBranch, falseActx, gs)
		if err != nil {
			return nil, err
		}
	}
	return []Node{IfStmt{
		base: newBase(s.Loc()), Negative: s.Negative, Condition: cond, TrueBody: trueBody, FalseBody: falseBody,
	}}, nil
}

// declaredNames returns the top-level variable/function names a clause
// body declares directly (not inside a nested block), used to compute
// switch fallthrough's bypassed-variable set (§4.3, §8 scenario 6).
func declaredNames(body []syntax.Statement) []string {
	var out []string
	for _, st := range body {
		switch s := st.(type) {
		case *syntax.VarGroupStmt:
			for _, d := range s.Declarators {
				if d.Name != "" {
					out = append(out, d.Name)
				} else {
					out = append(out, d.Names...)
				}
			}
		case *syntax.FuncDeclStmt:
			out = append(out, s.Name)
		}
	}
	return out
}

func generateSwitch(s *syntax.SwitchStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	ctrl, err := generateExprSeq(s.Control, actx, gs, context.PtcNone)
	if err != nil {
		return nil, err
	}
	shared := context.NewAnalyticContext(actx, false)
	var clauses []SwitchClause
	var seenNames []string
	for i := range s.Labels {
		var label []Node
		isDefault := s.Labels[i] == nil
		if !isDefault {
			label, err = generateExprSeq(s.Labels[i], actx, gs, context.PtcNone)
			if err != nil {
				return nil, err
			}
		}
		body, err := generateStatements(s.Bodies[i], shared, gs)
		if err != nil {
			return nil, err
		}
		bypassed := append([]string(nil), seenNames...)
		clauses = append(clauses, SwitchClause{
			Label: label, IsDefault: isDefault, Body: body, BypassedNames: bypassed,
		})
		seenNames = append(seenNames, declaredNames(s.Bodies[i])...)
	}
	return []Node{SwitchStmt{base: newBase(s.Loc()), Control: ctrl, Clauses: clauses}}, nil
}

func generateTry(s *syntax.TryStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	tryActx := context.NewAnalyticContext(actx, false)
	tryBody, err := generateStatements(s.TryBody, tryActx, genState{opts: gs.opts, insideTry: true})
	if err != nil {
		return nil, err
	}
	catchActx := context.NewAnalyticContext(actx, false)
	catchActx.Declare(s.ExceptName)
	catchActx.Declare("__backtrace")
	catchBody, err := generateStatements(s.CatchBody, catchActx, gs)
	if err != nil {
		return nil, err
	}
	return []Node{TryStmt{
		base: newBase(s.Loc()), TryBody: tryBody, CatchSloc: s.CatchSloc, ExceptName: s.ExceptName, CatchBody: catchBody,
	}}, nil
}

func generateReturn(s *syntax.ReturnStmt, actx *context.AnalyticContext, gs genState) ([]Node, error) {
	if len(s.Expr) == 0 {
		return []Node{SimpleStatus{base: newBase(s.Loc()), Status: StatusReturnVoid}}, nil
	}
	mode := tailMode(gs)
	if mode != context.PtcNone && s.ByRef {
		mode = context.PtcByRef
	}
	exprNodes, err := generateExprSeq(s.Expr, actx, gs, mode)
	if err != nil {
		return nil, err
	}
	out := append(exprNodes, CheckArgument{base: newBase(s.Loc()), ByRef: s.ByRef})
	out = append(out, ReturnValue{newBase(s.Loc())})
	return out, nil
}

// generateExprSeq lowers one RPN expression-unit sequence (§3.3, §4.3):
// every unit but the last is generated with tail == context.PtcNone; the
// last unit (and, recursively, the last unit of any sub-sequence it
// carries — a ternary or coalescence arm) inherits tail.
func generateExprSeq(units []syntax.Expr, actx *context.AnalyticContext, gs genState, tail context.PtcMode) ([]Node, error) {
	var out []Node
	for i, u := range units {
		mode := context.PtcNone
		if i == len(units)-1 {
			mode = tail
		}
		nodes, err := generateExprUnit(u, actx, gs, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func generateExprUnit(u syntax.Expr, actx *context.AnalyticContext, gs genState, tail context.PtcMode) ([]Node, error) {
	switch e := u.(type) {
	case *syntax.LiteralExpr:
		return []Node{PushTemporary{base: newBase(e.Loc()), Value: e.Value}}, nil

	case *syntax.LocalRefExpr:
		if depth, ok := actx.Resolve(e.Name); ok {
			return []Node{PushLocalReference{base: newBase(e.Loc()), Depth: depth, Name: e.Name, Hint: -1}}, nil
		}
		return []Node{PushGlobalReference{base: newBase(e.Loc()), Name: e.Name, Hint: -1}}, nil

	case *syntax.GlobalRefExpr:
		return []Node{PushGlobalReference{base: newBase(e.Loc()), Name: e.Name, Hint: -1}}, nil

	case *syntax.ClosureExpr:
		fnActx := context.NewAnalyticContext(actx, true)
		for _, p := range e.Params {
			fnActx.Declare(p)
		}
		if e.Variadic {
			fnActx.Declare("...")
		}
		body, err := generateStatements(e.Body, fnActx, genState{opts: gs.opts, insideTry: false})
		if err != nil {
			return nil, err
		}
		return []Node{DefineFunction{
			base: newBase(e.Loc()), QualifiedName: e.SyntheticName, Params: e.Params, Variadic: e.Variadic, Body: body,
		}}, nil

	case *syntax.BranchExpr:
		trueBody, err := generateExprSeq(e.TrueBranch, actx, gs, tail)
		if err != nil {
			return nil, err
		}
		falseBody, err := generateExprSeq(e.FalseBranch, actx, gs, tail)
		if err != nil {
			return nil, err
		}
		return []Node{BranchExpression{base: newBase(e.Loc()), Assign: e.Assign, TrueBody: trueBody, FalseBody: falseBody}}, nil

	case *syntax.CallExpr:
		return []Node{FunctionCall{base: newBase(e.Loc()), Nargs: e.Nargs, PtcMode: int(tail)}}, nil

	case *syntax.MemberExpr:
		return []Node{MemberAccess{base: newBase(e.Loc()), Name: e.Name}}, nil

	case *syntax.OperatorExpr:
		return []Node{ApplyOperator{base: newBase(e.Loc()), Op: e.Op, Assign: e.Assign}}, nil

	case *syntax.ArrayExpr:
		return []Node{PushUnnamedArray{base: newBase(e.Loc()), Nelems: e.Nelems}}, nil

	case *syntax.ObjectExpr:
		return []Node{PushUnnamedObject{base: newBase(e.Loc()), Keys: e.Keys}}, nil

	case *syntax.CoalescenceExpr:
		nullBody, err := generateExprSeq(e.NullBranch, actx, gs, tail)
		if err != nil {
			return nil, err
		}
		return []Node{Coalescence{base: newBase(e.Loc()), Assign: e.Assign, NullBody: nullBody}}, nil

	case *syntax.VariadicCallExpr:
		return []Node{VariadicCall{base: newBase(e.Loc()), PtcMode: int(tail)}}, nil

	case *syntax.ArgFinishExpr:
		return []Node{CheckArgument{base: newBase(e.Loc()), ByRef: e.ByRef}}, nil

	case *syntax.ImportCallExpr:
		return []Node{ImportCall{base: newBase(e.Loc()), Nargs: e.Nargs}}, nil

	case *syntax.CatchExpr:
		body, err := generateExprSeq(e.Body, actx, gs, context.PtcNone)
		if err != nil {
			return nil, err
		}
		return []Node{CatchExpression{base: newBase(e.Loc()), Body: body}}, nil

	default:
		return nil, fmt.Errorf("air: unhandled expression unit type %T", u)
	}
}
