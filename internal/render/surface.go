package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Surface receives one complete frame per tick.
type Surface interface {
	Draw(f Frame) error
}

// SizeFunc reports the drawable area in columns and rows.
type SizeFunc func() (width, height int, err error)

// TerminalSurface writes composed frames to a raw-mode terminal.
type TerminalSurface struct {
	out  io.Writer
	size SizeFunc
}

func NewTerminalSurface(out io.Writer, size SizeFunc) *TerminalSurface {
	return &TerminalSurface{out: out, size: size}
}

// Draw homes the cursor and overwrites the screen with f. Raw mode does not
// translate newlines, so each line ends with CRLF.
func (s *TerminalSurface) Draw(f Frame) error {
	w, h, err := s.size()
	if err != nil {
		return err
	}
	body := Compose(f, w, h)

	var b strings.Builder
	b.WriteString(termenv.CSI + fmt.Sprintf(termenv.CursorPositionSeq, 1, 1))
	b.WriteString(termenv.CSI + fmt.Sprintf(termenv.EraseDisplaySeq, 0))
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	_, err = io.WriteString(s.out, b.String())
	return err
}
