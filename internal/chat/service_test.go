package chat

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/itinerary"
)

type fakeAnswerer struct {
	mu        sync.Mutex
	answer    string
	err       error
	calls     int
	histories [][]itinerary.Turn
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeAnswerer) FollowUp(_ context.Context, _ string, history []itinerary.Turn, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.histories = append(f.histories, history)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.answer, f.err
}

func (f *fakeAnswerer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(t *testing.T, answerer Answerer, window int) *Service {
	t.Helper()
	return NewService(NewMemoryStore(time.Minute), answerer, window)
}

func TestAskSuccessAppendsTwoTurns(t *testing.T) {
	ans := &fakeAnswerer{answer: "Try the Old Quarter."}
	svc := newTestService(t, ans, 0)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "# Hanoi plan")
	require.NoError(t, err)

	updated, err := svc.Ask(ctx, sess.ID, "  Where to stay?  ")
	require.NoError(t, err)
	require.Len(t, updated.Turns, 2)
	assert.Equal(t, "Where to stay?", updated.Turns[0].Content)
	assert.Equal(t, "Try the Old Quarter.", updated.Turns[1].Content)
	assert.Equal(t, StateIdle, updated.State)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 2)
	assert.Equal(t, "# Hanoi plan", stored.InitialContext)
}

func TestAskFailureKeepsUserTurnOnly(t *testing.T) {
	ans := &fakeAnswerer{err: errors.New("upstream down")}
	svc := newTestService(t, ans, 0)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "plan")
	require.NoError(t, err)

	updated, err := svc.Ask(ctx, sess.ID, "q1")
	require.EqualError(t, err, "upstream down")
	require.Len(t, updated.Turns, 1)
	assert.Equal(t, RoleUser, updated.Turns[0].Role)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 1)
	assert.Equal(t, StateIdle, stored.State)

	// The session stays usable after a failed round.
	ans.err = nil
	ans.answer = "ok"
	updated, err = svc.Ask(ctx, sess.ID, "q2")
	require.NoError(t, err)
	assert.Len(t, updated.Turns, 3)
}

func TestAskWhileAwaitingIsNoop(t *testing.T) {
	ans := &fakeAnswerer{answer: "a1", entered: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(t, ans, 0)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "plan")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Ask(ctx, sess.ID, "first")
		done <- err
	}()
	<-ans.entered

	_, err = svc.Ask(ctx, sess.ID, "second")
	require.ErrorIs(t, err, ErrAwaiting)

	pending, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, pending.Turns, 1)
	assert.Equal(t, StateAwaiting, pending.State)
	assert.Equal(t, 1, ans.callCount())

	close(ans.release)
	require.NoError(t, <-done)

	final, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, final.Turns, 2)
	assert.Equal(t, 1, ans.callCount())
}

func TestAskDoesNotReplayHistoryByDefault(t *testing.T) {
	ans := &fakeAnswerer{answer: "a"}
	svc := newTestService(t, ans, 0)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "plan")
	require.NoError(t, err)
	for _, q := range []string{"q1", "q2"} {
		_, err := svc.Ask(ctx, sess.ID, q)
		require.NoError(t, err)
	}
	assert.Empty(t, ans.histories[1])
}

func TestAskReplaysBoundedHistory(t *testing.T) {
	ans := &fakeAnswerer{answer: "a"}
	svc := newTestService(t, ans, 1)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "plan")
	require.NoError(t, err)
	for _, q := range []string{"q1", "q2", "q3"} {
		_, err := svc.Ask(ctx, sess.ID, q)
		require.NoError(t, err)
	}
	assert.Empty(t, ans.histories[0])
	assert.Equal(t, []itinerary.Turn{{Question: "q2", Answer: "a"}}, ans.histories[2])
}

func TestAskValidation(t *testing.T) {
	svc := newTestService(t, &fakeAnswerer{}, 0)
	ctx := context.Background()

	_, err := svc.Ask(ctx, "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Ask(ctx, "missing", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskRecoversStaleAwaitingState(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	stale := NewSession("stale", "plan", time.Now())
	require.NoError(t, stale.Submit("lost question", time.Now()))
	require.NoError(t, store.Save(ctx, stale))

	svc := NewService(store, &fakeAnswerer{answer: "a"}, 0)
	sess, err := svc.Ask(ctx, "stale", "retry")
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 3)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	sess := NewSession("s1", "plan", time.Now())
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.Turns = append(got.Turns, Turn{Role: RoleUser, Content: "x"})

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.Turns)
}

func TestMemoryStoreLock(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	token, ok, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, _ = store.Acquire(ctx, "s1")
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "s1", token))
	_, ok, _ = store.Acquire(ctx, "s1")
	assert.True(t, ok)
}

func TestMemoryStoreReleaseIgnoresForeignToken(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	stale, ok, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)

	// The first claim lapses and a second round takes the session.
	store.locks.Delete("s1")
	current, ok, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "s1", stale))
	_, ok, _ = store.Acquire(ctx, "s1")
	assert.False(t, ok, "stale release must not free the current claim")

	require.NoError(t, store.Release(ctx, "s1", current))
	_, ok, _ = store.Acquire(ctx, "s1")
	assert.True(t, ok)
}

type slowAnswerer struct{}

func (slowAnswerer) FollowUp(ctx context.Context, _ string, _ []itinerary.Turn, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAskRoundIsBoundedBelowLockLifetime(t *testing.T) {
	assert.Less(t, roundTimeout, lockTTL)

	svc := newTestService(t, slowAnswerer{}, 0)
	svc.roundTimeout = 20 * time.Millisecond
	ctx := context.Background()

	sess, err := svc.Start(ctx, "plan")
	require.NoError(t, err)

	updated, err := svc.Ask(ctx, sess.ID, "q1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, updated)
	assert.Equal(t, StateIdle, updated.State)
	assert.Len(t, updated.Turns, 1)

	// The lock was released, so the next round runs.
	svc.answerer = &fakeAnswerer{answer: "ok"}
	updated, err = svc.Ask(ctx, sess.ID, "q2")
	require.NoError(t, err)
	assert.Len(t, updated.Turns, 3)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WAYFARER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WAYFARER_TEST_REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	id := "test-" + time.Now().Format("150405.000000000")

	_, err := store.Get(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	sess := NewSession(id, "plan", time.Now().UTC())
	require.NoError(t, sess.Submit("q", time.Now().UTC()))
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "plan", got.InitialContext)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, StateAwaiting, got.State)

	token, ok, err := store.Acquire(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = store.Acquire(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, id, "someone-else"))
	_, ok, err = store.Acquire(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "foreign token must not release the lock")

	require.NoError(t, store.Release(ctx, id, token))
	_, ok, err = store.Acquire(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Cleanup(func() { rdb.Del(context.Background(), sessionKey(id), lockKey(id)) })
}
