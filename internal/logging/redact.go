package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// redactingCore replaces the value of any field whose key contains one of
// the configured names.
type redactingCore struct {
	zapcore.Core
	keys []string
}

func newRedactingCore(core zapcore.Core, keys []string) zapcore.Core {
	lower := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			lower = append(lower, strings.ToLower(k))
		}
	}
	return &redactingCore{Core: core, keys: lower}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.redact(fields)), keys: c.keys}
}

func (c *redactingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *redactingCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(e, c.redact(fields))
}

func (c *redactingCore) redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !c.sensitive(f.Key) {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = zap.String(f.Key, redacted)
	}
	if out == nil {
		return fields
	}
	return out
}

func (c *redactingCore) sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, k := range c.keys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
