package iofio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWhenAny_SettlesWithFirstToResolve(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	p1, f1 := NewPromise[*Handle]()
	p2, f2 := NewPromise[*Handle]()
	id1 := d.Adopt(f1)
	id2 := d.Adopt(f2)

	winner := d.newTombstone("/first")
	p1.SetValue(winner)

	h, err := d.WhenAny([]OpID{id1, id2}).Wait()
	require.NoError(t, err)
	require.Equal(t, "/first", h.Path())

	p2.SetValue(d.newTombstone("/second")) // loser, should be ignored
}

func TestWhenAny_EmptyInput_NeverSettles(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	f := d.WhenAny(nil)
	require.False(t, f.Done())
}

func TestWhenAll_EmptyInput_ResolvesImmediately(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	handles, err := d.WhenAll(nil).Wait()
	require.NoError(t, err)
	require.Nil(t, handles)
}

func TestWhenAll_FirstFailurePropagates(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	sentinel := errors.New("op failed")
	p1, f1 := NewPromise[*Handle]()
	id1 := d.Adopt(f1)
	id2 := d.Adopt(Failed[*Handle](sentinel))

	p1.SetValue(d.newTombstone("/ok"))

	_, err := d.WhenAll([]OpID{id1, id2}).Wait()
	require.Error(t, err)
}

func TestWhenAllSettled_EmptyInput_ResolvesImmediately(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	results, err := d.WhenAllSettled(nil).Wait()
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestBarrier_UnknownOpID_StillResolves(t *testing.T) {
	d := New()
	t.Cleanup(func() { _ = d.Shutdown() })

	id := d.Barrier([]OpID{OpID(99999)})
	_, err := d.futureFor(id).Wait()
	require.NoError(t, err, "Barrier via WhenAllSettled never fails even if a member op is unknown")
}
