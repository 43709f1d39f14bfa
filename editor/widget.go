package editor

import (
	"slices"
	"sync"
)

// TextEditor is the capability boundary over the markdown editing widget.
// The view only reads and writes the buffer and subscribes to changes;
// rendering, preview and toolbar behaviour belong to the widget.
type TextEditor interface {
	Value() string
	SetValue(string)
	OnChange(func(string))
}

// Buffer is an in-process TextEditor. The web host uses it to stand in for
// the browser widget, whose value arrives through the mirrored form field.
type Buffer struct {
	mu        sync.Mutex
	value     string
	listeners []func(string)
}

// NewBuffer returns a Buffer holding value.
func NewBuffer(value string) *Buffer {
	return &Buffer{value: value}
}

// Value returns the current buffer.
func (b *Buffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// SetValue replaces the buffer and notifies change listeners.
func (b *Buffer) SetValue(v string) {
	b.mu.Lock()
	b.value = v
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// OnChange registers fn to be called after every SetValue.
func (b *Buffer) OnChange(fn func(string)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}
