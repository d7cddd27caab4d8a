package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDeliversInOrder(t *testing.T) {
	f := NewFeed(4)
	f.Notify(LevelSuccess, "WebSocket connected")
	f.Notify(LevelError, "WebSocket disconnected")

	got := f.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, "WebSocket connected", got[0].Message)
	assert.Equal(t, LevelError, got[1].Level)
	assert.False(t, got[0].At.IsZero())
}

func TestFeedDropsOldestWhenFull(t *testing.T) {
	f := NewFeed(2)
	f.Notify(LevelInfo, "one")
	f.Notify(LevelInfo, "two")
	f.Notify(LevelInfo, "three")

	got := f.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
}

func TestFeedDefaultSize(t *testing.T) {
	f := NewFeed(0)
	assert.Equal(t, DefaultFeedSize, cap(f.ch))
}

func TestFeedConcurrentNotify(t *testing.T) {
	f := NewFeed(8)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Notify(LevelInfo, "tick")
		}()
	}
	wg.Wait()
	assert.Len(t, f.Drain(), 8)
}

func TestFeedChannel(t *testing.T) {
	f := NewFeed(1)
	f.now = func() time.Time { return time.Unix(100, 0) }
	f.Notify(LevelInfo, "Status updated")

	select {
	case n := <-f.C():
		assert.Equal(t, "Status updated", n.Message)
		assert.Equal(t, time.Unix(100, 0), n.At)
	case <-time.After(time.Second):
		t.Fatal("expected notification")
	}
}

func TestFunc(t *testing.T) {
	var got []string
	n := Func(func(level Level, message string) {
		got = append(got, string(level)+":"+message)
	})
	n.Notify(LevelError, "boom")
	Discard.Notify(LevelError, "ignored")

	assert.Equal(t, []string{"error:boom"}, got)
}
