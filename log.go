package cell

import (
	"go.uber.org/zap"

	"github.com/AnatoleLucet/cell/internal"
)

// SetTraceLogger installs a structured logger for engine transitions
// (writes, reruns, loading flips, disposals, flushes), emitted at debug
// level. Pass nil to turn tracing back off.
func SetTraceLogger(l *zap.Logger) {
	internal.SetTraceLogger(l)
}
