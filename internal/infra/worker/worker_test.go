package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCompleter struct {
	calls atomic.Int32
	n     int
	err   error
}

func (c *countingCompleter) CompleteDue(context.Context) (int, error) {
	c.calls.Add(1)
	return c.n, c.err
}

func TestBookingCompletionRunOnce(t *testing.T) {
	ok := &countingCompleter{n: 3}
	assert.Equal(t, 3, NewBookingCompletionWorker(ok, time.Minute).RunOnce(context.Background()))

	failing := &countingCompleter{n: 5, err: errors.New("db down")}
	assert.Equal(t, 0, NewBookingCompletionWorker(failing, time.Minute).RunOnce(context.Background()))
}

func TestBookingCompletionRunsImmediatelyAndOnTick(t *testing.T) {
	c := &countingCompleter{}
	w := NewBookingCompletionWorker(c, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNewBookingCompletionWorkerDefaultsInterval(t *testing.T) {
	w := NewBookingCompletionWorker(&countingCompleter{}, 0)
	assert.Equal(t, time.Minute, w.tickInterval)
}

type fakeBackupSender struct {
	to  []string
	err error
}

func (f *fakeBackupSender) SendBackup(_ context.Context, to string) error {
	f.to = append(f.to, to)
	return f.err
}

func TestBackupWorkerRunOnce(t *testing.T) {
	s := &fakeBackupSender{}
	w := NewBackupWorker(s, "kopie@example.com", time.Hour)
	assert.True(t, w.RunOnce(context.Background()))
	assert.Equal(t, []string{"kopie@example.com"}, s.to)

	s.err = errors.New("smtp refused")
	assert.False(t, w.RunOnce(context.Background()))
}

func TestBackupWorkerWithoutRecipientReturns(t *testing.T) {
	s := &fakeBackupSender{}
	done := make(chan struct{})
	go func() {
		NewBackupWorker(s, "", time.Millisecond).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backup worker without recipient should return immediately")
	}
	assert.Empty(t, s.to)
}
