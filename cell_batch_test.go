package cell

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBatch(t *testing.T) {
	t.Run("coalesces writes", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))

			OnCleanup(func() {
				log = append(log, "cleanup")
			})
		})

		NewBatch(func() {
			count.Write(10)
			count.Write(20)
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"changed 0",
			"updated",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("nested batches flush once at the outermost exit", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
		})

		NewBatch(func() {
			count.Write(10)
			NewBatch(func() {
				count.Write(20)
			})
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"changed 0",
			"updated",
			"changed 20",
		}, log)
	})

	t.Run("reads inside a batch see written values", func(t *testing.T) {
		count := NewSignal(1)

		var seen int
		NewBatch(func() {
			count.Write(2)
			seen = count.Read()
		})

		assert.Equal(t, 2, seen)
	})

	t.Run("flush sync is a no-op while flushing", func(t *testing.T) {
		count := NewSignal(0)

		runs := 0
		NewEffect(func() {
			count.Read()
			runs++
			FlushSync() // re-entrant: must not recurse
		})

		count.Write(1)
		assert.Equal(t, 2, runs)
	})
}
