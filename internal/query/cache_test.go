package query

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestCache wires the change callback into a buffered channel so tests
// can wait for background fetches deterministically.
func newTestCache(opts Options) (*Cache, chan Key) {
	ch := make(chan Key, 128)
	opts.RetryDelay = time.Millisecond
	opts.OnChange = func(k Key) { ch <- k }
	return New(opts), ch
}

// waitFor drains change notifications until cond holds.
func waitFor(t *testing.T, ch <-chan Key, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-ch:
		case <-deadline:
			t.Fatal("timed out waiting for cache transition")
		}
	}
}

func TestReadFetchesOnceWhileFresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{})

	var calls atomic.Int64
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "v1", nil
	}

	res := c.Read(ctx, AccountsKey(), fetch)
	require.Equal(t, StatusLoading, res.Status)
	require.Nil(t, res.Value)

	waitFor(t, ch, func() bool { return c.Peek(AccountsKey()).Status == StatusSuccess })

	res = c.Read(ctx, AccountsKey(), fetch)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, "v1", res.Value)
	require.False(t, res.Refreshing)
	require.Equal(t, int64(1), calls.Load(), "fresh entry must not refetch")
}

func TestRetryWithinBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{}) // default: 2 retries

	var calls atomic.Int64
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}

	c.Read(ctx, NewKey("flaky"), fetch)
	waitFor(t, ch, func() bool { return c.Peek(NewKey("flaky")).Status == StatusSuccess })

	res := c.Peek(NewKey("flaky"))
	require.Equal(t, "ok", res.Value)
	require.NoError(t, res.Err)
	require.Equal(t, int64(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{Retries: 1})

	var calls atomic.Int64
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}

	c.Read(ctx, NewKey("dead"), fetch)
	waitFor(t, ch, func() bool { return c.Peek(NewKey("dead")).Status == StatusError })

	require.Equal(t, int64(2), calls.Load(), "1 retry = 2 attempts")

	// an errored entry must not be re-fetched on every read
	c.Read(ctx, NewKey("dead"), fetch)
	c.Read(ctx, NewKey("dead"), fetch)
	require.Equal(t, int64(2), calls.Load())
}

func TestErrorKeepsLastGoodValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{Retries: -1})

	var fail atomic.Bool
	fetch := func(context.Context) (any, error) {
		if fail.Load() {
			return nil, errors.New("down")
		}
		return "good", nil
	}

	key := NewKey("swr")
	c.Observe(key)
	c.Read(ctx, key, fetch)
	waitFor(t, ch, func() bool { return c.Peek(key).Status == StatusSuccess })

	fail.Store(true)
	c.Invalidate(ctx, key)
	waitFor(t, ch, func() bool { return c.Peek(key).Status == StatusError })

	res := c.Peek(key)
	require.Equal(t, "good", res.Value, "last good value stays displayable")
	require.Error(t, res.Err)
}

func TestInvalidateObservedRefetchesImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{})

	var calls atomic.Int64
	fetch := func(context.Context) (any, error) {
		return fmt.Sprintf("v%d", calls.Add(1)), nil
	}

	key := TransactionsKey(0)
	c.Observe(key)
	c.Read(ctx, key, fetch)
	waitFor(t, ch, func() bool { return c.Peek(key).Value == "v1" })

	// no Read in between: observed entries refetch on invalidation alone
	c.Invalidate(ctx, TransactionsFamily())
	waitFor(t, ch, func() bool { return c.Peek(key).Value == "v2" })
}

func TestInvalidatePrefixSparesOtherFamilies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{})

	var acctCalls, txCalls atomic.Int64
	acctFetch := func(context.Context) (any, error) { return acctCalls.Add(1), nil }
	txFetch := func(context.Context) (any, error) { return txCalls.Add(1), nil }

	c.Read(ctx, AccountsKey(), acctFetch)
	c.Read(ctx, TransactionsKey(5), txFetch)
	waitFor(t, ch, func() bool {
		return c.Peek(AccountsKey()).Status == StatusSuccess &&
			c.Peek(TransactionsKey(5)).Status == StatusSuccess
	})

	c.Invalidate(ctx, TransactionsFamily())

	// unobserved entries refetch lazily, on their next read
	c.Read(ctx, TransactionsKey(5), txFetch)
	waitFor(t, ch, func() bool { return c.Peek(TransactionsKey(5)).Value == int64(2) })

	c.Read(ctx, AccountsKey(), acctFetch)
	require.Equal(t, int64(1), acctCalls.Load(), "accounts family untouched")
}

func TestSupersededFetchDiscarded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ch := newTestCache(Options{Retries: -1})

	var calls atomic.Int64
	started := make(chan int64, 2)
	gate1 := make(chan struct{})
	gate2 := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		n := calls.Add(1)
		started <- n
		if n == 1 {
			<-gate1
			return "old", nil
		}
		<-gate2
		return "new", nil
	}

	key := NewKey("race")
	c.Observe(key)
	c.Read(ctx, key, fetch)
	require.Equal(t, int64(1), <-started)

	// second generation starts while the first is still in flight
	c.Invalidate(ctx, key)
	require.Equal(t, int64(2), <-started)

	close(gate2)
	waitFor(t, ch, func() bool { return c.Peek(key).Value == "new" })

	// the first generation finishes late; its result must be dropped
	close(gate1)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, "new", c.Peek(key).Value)
	require.Equal(t, StatusSuccess, c.Peek(key).Status)
}

func TestRefreshFocusedRefetchesStaleObserved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var nowNanos atomic.Int64
	nowNanos.Store(time.Now().UnixNano())
	c, ch := newTestCache(Options{
		FreshFor: time.Minute,
		Now:      func() time.Time { return time.Unix(0, nowNanos.Load()) },
	})

	var calls atomic.Int64
	fetch := func(context.Context) (any, error) { return calls.Add(1), nil }

	key := AccountsKey()
	c.Observe(key)
	c.Read(ctx, key, fetch)
	waitFor(t, ch, func() bool { return c.Peek(key).Status == StatusSuccess })

	// still fresh: focus does nothing
	c.RefreshFocused(ctx)
	require.Equal(t, int64(1), calls.Load())

	nowNanos.Add(int64(2 * time.Minute))
	c.RefreshFocused(ctx)
	waitFor(t, ch, func() bool { return c.Peek(key).Value == int64(2) })
}

func TestKeyPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key, prefix Key
		want        bool
	}{
		{TransactionsKey(5), TransactionsFamily(), true},
		{TransactionsKey(0), TransactionsFamily(), true},
		{AccountsKey(), TransactionsFamily(), false},
		{TransactionsFamily(), TransactionsKey(5), false},
		{TransactionsKey(5), TransactionsKey(5), true},
	}
	for _, tc := range cases {
		if got := tc.key.HasPrefix(tc.prefix); got != tc.want {
			t.Errorf("HasPrefix(%q, %q) = %v, want %v", tc.key, tc.prefix, got, tc.want)
		}
	}
}
