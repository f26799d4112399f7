package threadsource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskEngine_Submit_CorrelatesResults(t *testing.T) {
	te := NewTaskEngine(2)
	defer te.Close()

	const n = 50
	chans := make([]<-chan Result, n)
	for i := 0; i < n; i++ {
		i := i
		chans[i] = te.Submit(func() (any, error) { return i * i, nil })
	}
	for i, ch := range chans {
		res := <-ch
		require.NoError(t, res.Err)
		require.Equal(t, i*i, res.Value)
	}
}

func TestTaskEngine_Submit_PropagatesError(t *testing.T) {
	te := NewTaskEngine(1)
	defer te.Close()

	sentinel := errors.New("task failed")
	res := <-te.Submit(func() (any, error) { return nil, sentinel })
	require.ErrorIs(t, res.Err, sentinel)
}

func TestTaskEngine_DynamicPool_WorkerCountZero(t *testing.T) {
	te := NewTaskEngine(0)
	defer te.Close()
	require.Equal(t, 0, te.WorkerCount())
}

func TestTaskEngine_FixedPool_ReportsWorkerCount(t *testing.T) {
	te := NewTaskEngine(3)
	defer te.Close()
	require.Equal(t, 3, te.WorkerCount())
}

func TestTaskEngine_Close_StopsAcceptingWork(t *testing.T) {
	te := NewTaskEngine(1)
	te.Close()

	res := <-te.Submit(func() (any, error) { return nil, nil })
	require.Error(t, res.Err)
}

func TestTaskEngine_Close_IsIdempotent(t *testing.T) {
	te := NewTaskEngine(1)
	te.Close()
	require.NotPanics(t, func() { te.Close() })
}

func TestTaskEngine_ImplementsSource(t *testing.T) {
	var _ Source = (*TaskEngine)(nil)
}
