package iofio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpTable_ChainThenDrain_RunsCompletion(t *testing.T) {
	tbl := newOpTable()

	precondition := newOp(1, VerbFile, 0)
	tbl.insert(precondition)

	downstream := newOp(2, VerbRead, 0)
	tbl.insert(downstream)

	var seenHandle *Handle
	var seenErr error
	chained := tbl.chain(precondition.id, downstream.id, func(h *Handle, err error) (bool, *Handle, error) {
		seenHandle, seenErr = h, err
		return true, h, err
	})
	require.True(t, chained)

	h := &Handle{path: "/x"}
	precondition.promise.SetValue(h)

	completions := tbl.drain(precondition.id)
	require.Len(t, completions, 1)

	done, result, err := completions[0].fn(h, nil)
	require.True(t, done)
	require.NoError(t, err)
	require.Equal(t, h, result)
	require.Equal(t, h, seenHandle)
	require.NoError(t, seenErr)
}

func TestOpTable_Chain_FalseWhenPreconditionAlreadyResolved(t *testing.T) {
	tbl := newOpTable()
	precondition := newOp(1, VerbFile, 0)
	tbl.insert(precondition)
	tbl.drain(precondition.id) // marks resolved

	chained := tbl.chain(precondition.id, 2, func(h *Handle, err error) (bool, *Handle, error) {
		return true, h, err
	})
	require.False(t, chained)
}

func TestOpTable_Chain_FalseForZeroPrecondition(t *testing.T) {
	tbl := newOpTable()
	require.False(t, tbl.chain(0, 1, nil))
}

func TestOpTable_Get_ReportsResolvedAsNotFound(t *testing.T) {
	tbl := newOpTable()
	o := newOp(1, VerbFile, 0)
	tbl.insert(o)

	_, ok := tbl.get(1)
	require.True(t, ok)

	tbl.drain(1)

	_, ok = tbl.get(1)
	require.False(t, ok, "resolved ops must report not-found through get()")
}

func TestOpTable_Outcome_ReadsResolvedRecordDirectly(t *testing.T) {
	tbl := newOpTable()
	o := newOp(1, VerbFile, 0)
	tbl.insert(o)

	h := &Handle{path: "/y"}
	o.promise.SetValue(h)
	tbl.drain(1)

	got, err, done := tbl.outcome(1)
	require.True(t, done)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestOpTable_Outcome_NotFoundForUnknownID(t *testing.T) {
	tbl := newOpTable()
	_, _, done := tbl.outcome(999)
	require.False(t, done)
}

func TestOpTable_Compact_RemovesResolvedKeepsUnresolved(t *testing.T) {
	tbl := newOpTable()

	resolved := newOp(1, VerbFile, 0)
	tbl.insert(resolved)
	downstream := newOp(2, VerbRead, 0)
	tbl.insert(downstream)
	tbl.chain(1, 2, func(h *Handle, err error) (bool, *Handle, error) { return true, h, err })
	tbl.drain(1) // drain always clears the completion list once resolved

	unresolved := newOp(3, VerbFile, 0)
	tbl.insert(unresolved)

	tbl.Compact()

	_, ok := tbl.m[1]
	require.False(t, ok, "resolved op should be compacted away")
	_, ok = tbl.m[3]
	require.True(t, ok, "unresolved op must survive Compact")
}
