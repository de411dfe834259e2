package asynctcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureChannel_RoundTrip(t *testing.T) {
	addr := createListener(t, echoHandler)
	ch, _ := openTest(t, DefaultConfig())
	fc := NewFutureChannel(ch)
	ctx := context.Background()

	_, err := fc.Connect(addr).Wait(ctx)
	require.NoError(t, err)

	payload := []byte("deferred")
	n, err := fc.Write(payload, time.Second).Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	buf := make([]byte, len(payload))
	read := 0
	for read < len(payload) {
		n, err := fc.Read(buf[read:], time.Second).Wait(ctx)
		require.NoError(t, err)
		require.Greater(t, n, 0)
		read += n
	}
	assert.Equal(t, payload, buf)
}

func TestFuture_DeliversOperationErrors(t *testing.T) {
	ch, _ := openTest(t, DefaultConfig())
	fc := NewFutureChannel(ch)

	n, err := fc.Read(make([]byte, 4), 0).Wait(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Zero(t, n)
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	addr := createListener(t, silentHandler)
	ch, _ := openTest(t, DefaultConfig())
	fc := NewFutureChannel(ch)
	connectT(t, ch, addr)

	// The peer sends nothing and the read has no timeout, so only the
	// caller's context bounds the wait.
	future := fc.Read(make([]byte, 4), 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := future.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-future.Done():
		t.Fatal("abandoning the wait must not complete the operation")
	default:
	}
}

func TestFuture_DoneSignalsCompletion(t *testing.T) {
	ch, _ := openTest(t, DefaultConfig())
	fc := NewFutureChannel(ch)

	future := fc.Write([]byte("x"), 0)
	select {
	case <-future.Done():
	case <-time.After(callbackWait):
		t.Fatal("future never completed")
	}
	_, err := future.Wait(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestFutureChannel_ExposesUnderlyingChannel(t *testing.T) {
	ch, _ := openTest(t, DefaultConfig())
	assert.Same(t, ch, NewFutureChannel(ch).Channel())
	assert.Same(t, ch, NewLazyChannel(ch).Channel())
}
