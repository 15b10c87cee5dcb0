// Package clipboard writes exported Markdown to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

// Ensure System implements the interface.
var _ driven.Clipboard = (*System)(nil)

// ErrUnsupported is returned when no clipboard utility is available,
// e.g. on a headless Linux host without xclip, xsel or wl-copy.
var ErrUnsupported = errors.New("clipboard unavailable")

// System writes to the OS clipboard.
type System struct {
	unsupported func() bool
	write       func(string) error
}

// New returns the OS clipboard writer.
func New() *System {
	return &System{
		unsupported: func() bool { return clipboard.Unsupported },
		write:       clipboard.WriteAll,
	}
}

// WriteText copies text to the clipboard.
func (s *System) WriteText(text string) error {
	if s.unsupported() {
		return ErrUnsupported
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard for tests and headless runs.
type Memory struct {
	Text string
}

var _ driven.Clipboard = (*Memory)(nil)

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.Text = text
	return nil
}
