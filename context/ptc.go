package context

import (
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/value"
)

// PtcMode selects how a proper tail call's result is handled once the
// trampoline finally invokes it (§3.10, §4.9).
type PtcMode uint8

const (
	PtcNone PtcMode = iota
	PtcByRef
	PtcByVal
	PtcVoid
)

func (m PtcMode) String() string {
	switch m {
	case PtcNone:
		return "none"
	case PtcByRef:
		return "by_ref"
	case PtcByVal:
		return "by_val"
	case PtcVoid:
		return "void"
	default:
		return "ptc_mode(?)"
	}
}

// PtcArguments packages a pending proper tail call (§3.10): the callee, the
// captured alternate stack at call time (already in argument order), and
// the mode the caller wanted applied to the eventual result. The outermost
// interpreter loop repeatedly unpacks a returned PtcArguments until the
// callee's result is no longer one (§4.9).
type PtcArguments struct {
	Sloc     diag.Loc
	Mode     PtcMode
	Callee   value.Callable
	ArgStack []Reference
}
