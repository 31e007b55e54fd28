package avmc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/avmc"
)

func TestSolidifyMarksNodesAfterTerminatorUnreachable(t *testing.T) {
	nodes := []air.Node{
		air.ClearStack{},
		air.ReturnValue{},
		air.ClearStack{},
		air.Throw{},
	}
	q := avmc.Solidify(nodes)
	require.Equal(t, 4, q.Len())
	require.Equal(t, []bool{true, true, false, false}, q.Reachable)
	require.Len(t, q.DeadCode(), 2)
}

func TestSolidifyIfJoinStaysReachableUnlessBothBranchesTerminate(t *testing.T) {
	oneSided := air.IfStmt{
		TrueBody:  []air.Node{air.ReturnValue{}},
		FalseBody: nil,
	}
	q := avmc.Solidify([]air.Node{oneSided, air.ClearStack{}})
	require.Equal(t, []bool{true, true}, q.Reachable)

	bothSided := air.IfStmt{
		TrueBody:  []air.Node{air.ReturnValue{}},
		FalseBody: []air.Node{air.Throw{}},
	}
	q = avmc.Solidify([]air.Node{bothSided, air.ClearStack{}})
	require.Equal(t, []bool{true, false}, q.Reachable)
}

func TestSolidifyEmptyBody(t *testing.T) {
	q := avmc.Solidify(nil)
	require.Equal(t, 0, q.Len())
	require.Empty(t, q.DeadCode())
}
