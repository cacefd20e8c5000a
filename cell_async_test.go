package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestAsync(t *testing.T) {
	t.Run("loading flips once the future resolves", func(t *testing.T) {
		sw := NewSignal(1)
		pending := NewFuture[int]()

		m := NewAsyncComputed(func() *Future[int] {
			if sw.Read() == 1 {
				return pending
			}
			return Resolved(2)
		})

		log := []bool{}
		NewEffect(func() {
			log = append(log, m.Loading())
		})
		assert.Equal(t, []bool{true}, log)

		sw.Write(2)
		assert.Equal(t, []bool{true, false}, log)
		assert.Equal(t, 2, m.Read())

		// the orphaned future resolving changes nothing
		pending.Resolve(99)
		FlushSync()
		assert.Equal(t, []bool{true, false}, log)
		assert.Equal(t, 2, m.Read())
	})

	t.Run("stale future resolution is ignored", func(t *testing.T) {
		sw := NewSignal(true)
		p1 := NewFuture[int]()
		p2 := NewFuture[int]() // never resolves

		m := NewAsyncComputed(func() *Future[int] {
			if sw.Read() {
				return p1
			}
			return p2
		})

		o := NewComputed(func() int {
			return m.Read()
		})

		o.Read()
		assert.True(t, o.Loading())

		sw.Write(false)
		assert.True(t, o.Loading())

		// p1 was superseded by p2; its resolution must not end loading
		p1.Resolve(1)
		FlushSync()
		assert.True(t, o.Loading())
		assert.True(t, m.Loading())
	})

	t.Run("loading propagates through value reads", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		sum := NewComputed(func() int {
			return m.Read() + 1
		})

		assert.Equal(t, 1, sum.Read()) // zero value while pending
		assert.True(t, sum.Loading())

		f.Resolve(41)
		assert.Equal(t, 42, sum.Read())
		assert.False(t, sum.Loading())
	})

	t.Run("loading stays true between reads while pending", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		assert.True(t, m.Loading())
		assert.True(t, m.Loading())
	})

	t.Run("wait aborts and reruns the effect on resolution", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		log := []int{}
		NewEffect(func() {
			log = append(log, m.Wait())
		})
		assert.Empty(t, log)

		f.Resolve(42)
		assert.Equal(t, []int{42}, log)
	})

	t.Run("is pending", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		NewEffect(func() {
			assert.True(t, IsPending(func() { m.Wait() }))
		})
	})

	t.Run("rejection latches into the error channel", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		assert.True(t, m.Loading())

		f.Reject("boom")
		assert.False(t, m.Loading())
		assert.True(t, m.Error())
		assert.PanicsWithValue(t, "boom", func() { m.Read() })
	})

	t.Run("writing a future to a signal", func(t *testing.T) {
		s := NewSignal(1)

		f := NewFuture[int]()
		s.WriteFuture(f)
		assert.True(t, s.Loading())
		assert.Equal(t, 1, s.Read()) // previous value while pending

		f.Resolve(2)
		assert.False(t, s.Loading())
		assert.Equal(t, 2, s.Read())
	})

	t.Run("a plain write supersedes a pending future", func(t *testing.T) {
		s := NewSignal(1)

		f := NewFuture[int]()
		s.WriteFuture(f)
		s.Write(5)
		assert.False(t, s.Loading())

		f.Resolve(2)
		FlushSync()
		assert.Equal(t, 5, s.Read())
	})

	t.Run("resolution from another goroutine applies at the next flush", func(t *testing.T) {
		f := NewFuture[int]()
		m := NewAsyncComputed(func() *Future[int] { return f })

		log := []int{}
		NewEffect(func() {
			if !m.Loading() {
				log = append(log, m.Read())
			}
		})
		assert.Empty(t, log)

		var g errgroup.Group
		g.Go(func() error {
			f.Resolve(7)
			return nil
		})
		assert.NoError(t, g.Wait())

		FlushSync()
		assert.Equal(t, []int{7}, log)
	})
}
