package iofio

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromise_SetValue_ResolvesFuture(t *testing.T) {
	p, f := NewPromise[int]()

	require.False(t, f.Done())

	ok := p.SetValue(42)
	require.True(t, ok)

	val, err, done := f.Peek()
	require.True(t, done)
	require.NoError(t, err)
	require.Equal(t, 42, val)
}

func TestPromise_SecondResolve_IsNoOp(t *testing.T) {
	p, f := NewPromise[int]()

	require.True(t, p.SetValue(1))
	require.False(t, p.SetValue(2))
	require.False(t, p.SetError(errors.New("late")))

	val, err, _ := f.Peek()
	require.NoError(t, err)
	require.Equal(t, 1, val)
}

func TestFuture_Wait_BlocksUntilResolved(t *testing.T) {
	p, f := NewPromise[string]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.SetValue("done")
	}()

	val, err := f.Wait()
	wg.Wait()
	require.NoError(t, err)
	require.Equal(t, "done", val)
}

func TestFuture_Notify_SyncWhenAlreadyResolved(t *testing.T) {
	f := Resolved(7)

	called := false
	f.Notify(func(v int, err error) {
		called = true
		require.NoError(t, err)
		require.Equal(t, 7, v)
	})
	require.True(t, called)
}

func TestFuture_Notify_RunsOnResolvingGoroutine(t *testing.T) {
	p, f := NewPromise[int]()

	done := make(chan struct{})
	f.Notify(func(v int, err error) {
		close(done)
	})

	p.SetValue(1)
	<-done
}

func TestFailed_IsAlreadyResolvedWithError(t *testing.T) {
	sentinel := errors.New("boom")
	f := Failed[int](sentinel)

	val, err, done := f.Peek()
	require.True(t, done)
	require.Equal(t, sentinel, err)
	require.Equal(t, 0, val)
}

func TestFuture_CopySharesState(t *testing.T) {
	p, f := NewPromise[int]()
	clone := f

	p.SetValue(99)

	v1, _, _ := f.Peek()
	v2, _, _ := clone.Peek()
	require.Equal(t, v1, v2)
}
