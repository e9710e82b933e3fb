// Package sessionlog mirrors important log records to the UI.
package sessionlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

// Entry is one log record as shown in the diagnostics panel.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Source  string    `json:"source,omitempty"`
}

// Sink receives entries at or above the tee threshold.
type Sink func(Entry)

// TeeHandler forwards every record to base and hands records at or above
// minLevel to sink. Sink panics are contained.
type TeeHandler struct {
	base     slog.Handler
	sink     Sink
	minLevel slog.Level
	attrs    []slog.Attr
	group    string
}

// NewTeeHandler wraps base. A nil sink makes the handler a plain passthrough.
func NewTeeHandler(base slog.Handler, minLevel slog.Level, sink Sink) *TeeHandler {
	return &TeeHandler{base: base, sink: sink, minLevel: minLevel}
}

// Enabled defers to the base handler.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle writes to base, then tees. The sink runs even when base fails.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)
	if h.sink != nil && record.Level >= h.minLevel {
		h.emit(h.entryFor(record))
	}
	return err
}

func (h *TeeHandler) emit(e Entry) {
	defer func() {
		if r := recover(); r != nil {
			// Logging through slog here would recurse into this handler.
			fmt.Fprintf(os.Stderr, "[session-log] sink panicked: %v\n%s\n", r, debug.Stack())
		}
	}()
	h.sink(e)
}

func (h *TeeHandler) entryFor(record slog.Record) Entry {
	var detail []string
	for _, a := range h.attrs {
		detail = appendAttr(detail, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		detail = appendAttr(detail, h.group, a)
		return true
	})
	return Entry{
		Time:    record.Time,
		Level:   record.Level.String(),
		Message: record.Message,
		Detail:  strings.Join(detail, " "),
		Source:  h.group,
	}
}

func appendAttr(out []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return out
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			out = appendAttr(out, key, sub)
		}
		return out
	}
	return append(out, key+"="+a.Value.String())
}

// WithAttrs keeps the attributes both on base and for tee'd entries.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.base = h.base.WithAttrs(attrs)
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup nests subsequent attributes under name. The group path is the
// entry's Source.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.base = h.base.WithGroup(name)
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}
