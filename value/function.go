package value

// Callable is the abstract shape of a function Value. Concrete
// implementations (a native builtin, or a user-defined closure produced
// by the AIR/interpreter layers) live in higher packages; value only
// needs enough surface to let the GC traverse closure captures and to let
// the interpreter identify and invoke whatever it finds on the stack.
//
// This is a deliberate dependency inversion: air/context/interp depend on
// value (for Value/Variable), not the other way around, so Callable
// cannot itself reference a Variable/Reference type defined up there. The
// interpreter recovers the concrete type via a type assertion when it
// actually performs a call (§4.9).
type Callable interface {
	// FuncName returns the qualified name used in backtraces (§4.9,
	// §6.4), or a synthesized "<closure at ...>" label.
	FuncName() string

	// VisitCaptured walks every Variable this callable captures by
	// reference (closures only; native builtins are leaves), feeding the
	// GC's explicit-stack traversal (§4.10).
	VisitCaptured(visit func(*Variable))
}

// OpaqueHandle is a shared handle to a foreign (host-bound) object.
// Binding of foreign objects is an external collaborator (§1); value only
// needs an identity-comparable, named handle.
type OpaqueHandle interface {
	TypeName() string
}
