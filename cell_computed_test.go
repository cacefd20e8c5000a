package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputed(t *testing.T) {
	t.Run("evaluates lazily", func(t *testing.T) {
		count := NewSignal(1)

		runs := 0
		double := NewComputed(func() int {
			runs++
			return count.Read() * 2
		})

		assert.Equal(t, 0, runs)
		assert.Equal(t, 2, double.Read())
		assert.Equal(t, 1, runs)

		// repeated reads hit the cache
		double.Read()
		double.Read()
		assert.Equal(t, 1, runs)
	})

	t.Run("recomputes only when a source changed", func(t *testing.T) {
		count := NewSignal(1)
		other := NewSignal(1)

		runs := 0
		double := NewComputed(func() int {
			runs++
			return count.Read() * 2
		})

		double.Read()
		other.Write(2) // unrelated
		double.Read()
		assert.Equal(t, 1, runs)

		count.Write(2)
		assert.Equal(t, 4, double.Read())
		assert.Equal(t, 2, runs)
	})

	t.Run("unchanged intermediate stops propagation", func(t *testing.T) {
		count := NewSignal(1)

		aRuns, bRuns := 0, 0
		a := NewComputed(func() int {
			aRuns++
			return count.Read() % 2
		})
		b := NewComputed(func() int {
			bRuns++
			return a.Read() + 1
		})

		assert.Equal(t, 2, b.Read())
		count.Write(3) // a recomputes to 1 again
		assert.Equal(t, 2, b.Read())

		assert.Equal(t, 2, aRuns)
		assert.Equal(t, 1, bRuns)
	})

	t.Run("diamond reruns the effect exactly once per change", func(t *testing.T) {
		x := NewSignal(10)
		y := NewSignal(10)

		a := NewComputed(func() int { return x.Read() + y.Read() })
		b := NewComputed(func() int { return a.Read() })

		log := []int{}
		NewEffect(func() {
			log = append(log, b.Read())
		})
		assert.Equal(t, []int{20}, log)

		x.Write(20)
		assert.Equal(t, []int{20, 30}, log)

		y.Write(20)
		assert.Equal(t, []int{20, 30, 40}, log)

		// writing the same values again changes nothing
		x.Write(20)
		y.Write(20)
		FlushSync()
		assert.Equal(t, []int{20, 30, 40}, log)
	})

	t.Run("dynamic dependencies are dropped and added", func(t *testing.T) {
		useFirst := NewSignal(true)
		first := NewSignal("a")
		second := NewSignal("b")

		runs := 0
		pick := NewComputed(func() string {
			runs++
			if useFirst.Read() {
				return first.Read()
			}
			return second.Read()
		})

		assert.Equal(t, "a", pick.Read())

		second.Write("B") // not a dependency yet
		assert.Equal(t, "a", pick.Read())
		assert.Equal(t, 1, runs)

		useFirst.Write(false)
		assert.Equal(t, "B", pick.Read())

		first.Write("A") // no longer a dependency
		assert.Equal(t, "B", pick.Read())
		assert.Equal(t, 2, runs)
	})

	t.Run("reducer receives the previous value", func(t *testing.T) {
		tick := NewSignal(0, AlwaysNotify[int]())

		sum := NewReducer(0, func(prev int) int {
			return prev + tick.Read()
		})

		assert.Equal(t, 0, sum.Read())

		tick.Write(5)
		assert.Equal(t, 5, sum.Read())

		tick.Write(7)
		assert.Equal(t, 12, sum.Read())
	})

	t.Run("glitch freedom matches a from-scratch evaluation", func(t *testing.T) {
		a := NewSignal(1)
		b := NewComputed(func() int { return a.Read() * 2 })
		c := NewComputed(func() int { return a.Read() + b.Read() })

		assert.Equal(t, 3, c.Read())

		a.Write(2)
		assert.Equal(t, 4, b.Read())
		assert.Equal(t, 6, c.Read())
	})

	t.Run("computeds created inside a computation are disposed on rerun", func(t *testing.T) {
		count := NewSignal(1)

		var inner *Computed[int]
		outer := NewComputed(func() int {
			inner = NewComputed(func() int { return 1 })
			inner.Read()
			return count.Read()
		})

		assert.Equal(t, 1, outer.Read())
		previous := inner

		count.Write(2)
		assert.Equal(t, 2, outer.Read())

		assert.Panics(t, func() { previous.Read() })
		assert.NotPanics(t, func() { inner.Read() })
	})
}
