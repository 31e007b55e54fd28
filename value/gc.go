package value

import "sync/atomic"

// GC is the three-generation collector of §4.10. Each generation is a
// simple membership slice; allocation checks thresholds youngest-first
// and reuses cells from a free pool before creating new ones.
//
// Reachability is computed from explicit roots rather than from the
// original's shared-count bookkeeping: Go's References are plain values
// that can be copied anywhere, so no per-handle count can be kept honest.
// The runtime instead registers a Roots callback that enumerates every
// Variable and temporary Value held by a live ExecutiveContext; from that
// seed the collector walks the value graphs (arrays, objects, closure
// captures) with an explicit worklist. A Variable pinned by a rebind
// snapshot (shared > 0, see Variable.Retain) is treated as a root too,
// since the AIR tree holding it is invisible to the context registry.
type GC struct {
	gens       [3][]*Variable
	thresholds [3]int
	pool       []*Variable

	// Roots enumerates the mark-phase seed. When nil (a GC used
	// standalone, with no runtime attached), collection degrades to a
	// promote-only pass that reclaims nothing.
	Roots func(markVar func(*Variable), markVal func(Value))

	// Logger receives any panic recovered while finalizing an
	// unreachable Variable (§4.10: "exceptions during uninitialization
	// are caught and logged; the variable is dropped anyway").
	Logger func(recovered any)
}

// NewGC returns a collector with the default generation thresholds.
func NewGC() *GC {
	return &GC{thresholds: [3]int{256, 1024, 4096}}
}

// Allocate returns a fresh or recycled Variable, running any generation
// whose live count exceeds its threshold first (§4.10). The new Variable
// is not yet tracked when collection runs, so an allocation can never
// reclaim the cell it is about to hand out.
func (gc *GC) Allocate() *Variable {
	for g := 0; g < len(gc.gens); g++ {
		if len(gc.gens[g]) > gc.thresholds[g] {
			gc.collectGeneration(g)
		}
	}

	var v *Variable
	if n := len(gc.pool); n > 0 {
		v = gc.pool[n-1]
		gc.pool = gc.pool[:n-1]
		*v = Variable{}
	} else {
		v = &Variable{}
	}
	gc.gens[0] = append(gc.gens[0], v)
	return v
}

// LiveCount reports the number of Variables tracked across all
// generations, for diagnostics/tests.
func (gc *GC) LiveCount() int {
	n := 0
	for _, g := range gc.gens {
		n += len(g)
	}
	return n
}

// CollectAll forces a full collection pass over every generation,
// oldest-first, useful for deterministic tests and for an embedder that
// wants to reclaim memory at a script boundary.
func (gc *GC) CollectAll() {
	for g := len(gc.gens) - 1; g >= 0; g-- {
		gc.collectGeneration(g)
	}
}

// collectGeneration collects generations 0..g: seed the mark worklist
// from Roots, pinned Variables, and the untouched older generations
// (whose members may reference younger ones), walk the reachable graph
// with an explicit stack (§9: direct recursion is forbidden here), then
// finalize every tracked Variable the walk never reached and promote the
// survivors to the next generation.
func (gc *GC) collectGeneration(g int) {
	tracked := make(map[*Variable]struct{})
	for gi := 0; gi <= g; gi++ {
		for _, v := range gc.gens[gi] {
			tracked[v] = struct{}{}
		}
	}

	reached := make(map[*Variable]struct{})
	var varQ []*Variable
	var valQ []Value
	markVar := func(v *Variable) {
		if v == nil {
			return
		}
		if _, ok := reached[v]; ok {
			return
		}
		reached[v] = struct{}{}
		varQ = append(varQ, v)
	}
	markVal := func(v Value) { valQ = append(valQ, v) }

	if gc.Roots != nil {
		gc.Roots(markVar, markVal)
	}
	for v := range tracked {
		if atomic.LoadInt32(&v.shared) > 0 {
			markVar(v)
		}
	}
	for gi := g + 1; gi < len(gc.gens); gi++ {
		for _, v := range gc.gens[gi] {
			markVar(v)
		}
	}

	for len(varQ) > 0 || len(valQ) > 0 {
		if n := len(varQ); n > 0 {
			v := varQ[n-1]
			varQ = varQ[:n-1]
			if val, ok := v.Get(); ok {
				valQ = append(valQ, val)
			}
			continue
		}
		n := len(valQ)
		cur := valQ[n-1]
		valQ = valQ[:n-1]
		switch cur.kind {
		case Array:
			valQ = cur.arr.visitChildren(valQ)
		case Object:
			valQ = cur.obj.visitChildren(valQ)
		case Function:
			if cur.fn != nil {
				cur.fn.VisitCaptured(markVar)
			}
		}
	}

	newGens := [3][]*Variable{}
	for gi := 0; gi <= g; gi++ {
		for _, v := range gc.gens[gi] {
			if gc.Roots != nil {
				if _, ok := reached[v]; !ok {
					gc.finalize(v)
					continue
				}
			}
			target := gi + 1
			if target > 2 {
				target = 2
			}
			newGens[target] = append(newGens[target], v)
			v.gen = int8(target)
		}
	}
	for gi := g + 1; gi < 3; gi++ {
		newGens[gi] = append(newGens[gi], gc.gens[gi]...)
	}
	gc.gens = newGens
}

func (gc *GC) finalize(v *Variable) {
	defer func() {
		if r := recover(); r != nil && gc.Logger != nil {
			gc.Logger(r)
		}
		gc.pool = append(gc.pool, v)
	}()
	v.Uninitialize()
}
