package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// bufferCore is a zapcore.Core that stores entries in a LogBuffer.
// The entry's logger name becomes the LogEntry's NodeID.
type bufferCore struct {
	zapcore.LevelEnabler
	buffer *LogBuffer
	fields []zapcore.Field
}

// NewBufferCore returns a core writing to buf for every level enab allows.
func NewBufferCore(buf *LogBuffer, enab zapcore.LevelEnabler) zapcore.Core {
	return &bufferCore{LevelEnabler: enab, buffer: buf}
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &bufferCore{
		LevelEnabler: c.LevelEnabler,
		buffer:       c.buffer,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *bufferCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *bufferCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	name := ent.LoggerName
	if name == "" {
		name = "system"
	}

	msg := ent.Message
	if kv := formatFields(c.fields, fields); kv != "" {
		msg += " " + kv
	}

	c.buffer.AddEntry(LogEntry{
		Timestamp: ent.Time,
		Level:     ent.Level,
		NodeID:    name,
		Message:   msg,
	})
	return nil
}

func (c *bufferCore) Sync() error { return nil }

func formatFields(groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range groups {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, enc.Fields[k])
	}
	return strings.Join(parts, " ")
}
