//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// GetRuntime returns the calling goroutine's runtime, creating it on first
// use. Each goroutine gets an isolated graph.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime(gid)
	runtimes.Store(gid, r)
	return r
}

func getGID() int64 {
	return goid.Get()
}
