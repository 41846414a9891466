package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_InvalidWorkers(t *testing.T) {
	_, err := New(&Config{Workers: 0}, nil)
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	p, err := New(&Config{Workers: 4, ReleaseTimeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Shutdown()

	var wg sync.WaitGroup
	var n atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, 20, n.Load())
	assert.EqualValues(t, 20, p.Stats().Submitted)
}

func TestSubmit_Nonblocking(t *testing.T) {
	p, err := New(&Config{Workers: 1, Nonblocking: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Shutdown()

	release := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-release }))

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolFull)

	assert.Equal(t, 1, p.Running())
	assert.Equal(t, 0, p.Free())

	close(release)
}

func TestSubmit_AfterShutdown(t *testing.T) {
	p, err := New(&Config{Workers: 1}, zaptest.NewLogger(t))
	require.NoError(t, err)
	p.Shutdown()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPanicIsRecovered(t *testing.T) {
	p, err := New(&Config{Workers: 1, ReleaseTimeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Shutdown()

	require.NoError(t, p.Submit(func() { panic("bad task") }))
	assert.Eventually(t, func() bool { return p.Stats().Failed == 1 }, time.Second, 10*time.Millisecond)
}
