package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore samples entries below error level. Errors always pass.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	errors := &levelFilterCore{Core: core, keep: func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel }}
	below := &levelFilterCore{Core: core, keep: func(l zapcore.Level) bool { return l < zapcore.ErrorLevel }}

	return zapcore.NewTee(
		errors,
		zapcore.NewSamplerWithOptions(below, cfg.Tick, cfg.Initial, cfg.Thereafter),
	)
}

// levelFilterCore passes only the levels keep accepts.
type levelFilterCore struct {
	zapcore.Core
	keep func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.keep(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.keep(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), keep: c.keep}
}
