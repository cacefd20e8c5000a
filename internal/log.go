package internal

import "go.uber.org/zap"

// trace is the optional structured logger for engine transitions. It is
// nil (and every hook a no-op) unless the host installs one.
var trace *zap.Logger

// SetTraceLogger installs or removes (nil) the engine trace logger. The
// logger is shared by every runtime; zap is safe for that.
func SetTraceLogger(l *zap.Logger) {
	trace = l
}

func traceWrite(c *Cell, changed bool) {
	if trace == nil {
		return
	}
	trace.Debug("write",
		zap.String("cell", c.label()),
		zap.Bool("changed", changed),
		zap.Bool("loading", c.IsLoading()),
		zap.Bool("error", c.IsError()))
}

func traceUpdate(c *Cell) {
	if trace == nil {
		return
	}
	trace.Debug("update",
		zap.String("cell", c.label()),
		zap.Stringer("state", c.state))
}

func traceLoading(c *Cell, now bool) {
	if trace == nil {
		return
	}
	trace.Debug("loading",
		zap.String("cell", c.label()),
		zap.Bool("now", now))
}

func traceDispose(c *Cell) {
	if trace == nil {
		return
	}
	trace.Debug("dispose", zap.String("cell", c.label()))
}

func traceFlush(pending int) {
	if trace == nil {
		return
	}
	trace.Debug("flush", zap.Int("pending", pending))
}
