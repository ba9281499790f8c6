package core

import (
	"context"
	"io"
)

// PTY is the subset of the PTY collaborator (§6) the I/O Loop needs:
// a byte stream in each direction. Allocation and process lifecycle
// live in the shell package, outside the CORE.
type PTY interface {
	io.Reader
	io.Writer
}

// Renderer is the Renderer Adapter collaborator (§6): given a dirty
// Buffer Manager, it produces draw directives on an external surface.
// The CORE only ever calls Draw after draining an event source, never
// mid-mutation (§5's repaint-ordering guarantee).
type Renderer interface {
	Draw(*Buffer)
}

// Clipboard is the clipboard half of the Window/Surface collaborator
// (§6): Copy hands text to the system clipboard; RequestPaste asks
// the window toolkit to deliver the clipboard contents asynchronously
// as a PasteEvent on the same event channel the Loop already reads.
type Clipboard interface {
	Copy(text string)
	RequestPaste()
}

// Metrics carries the pixel geometry needed to map window coordinates
// to grid coordinates (§4.3 step 1-2): border width and font cell size.
type Metrics struct {
	Border     int
	FontWidth  int
	FontHeight int
}

// Event is the sum type of window events the I/O Loop multiplexes
// (§6's Window/Surface collaborator "in" events). Exactly one concrete
// type below is carried by each Event.
type Event interface{ isEvent() }

type ExposeEvent struct{}
type ResizeEvent struct{ Width, Height int }
type ButtonEvent struct {
	Button MouseButton
	X, Y   int
}
type MotionEvent struct{ X, Y int }
type PasteEvent struct{ Data []byte }
type KeyPressEvent struct{ Key KeyEvent }

func (ExposeEvent) isEvent()    {}
func (ResizeEvent) isEvent()    {}
func (ButtonEvent) isEvent()    {}
func (MotionEvent) isEvent()    {}
func (PasteEvent) isEvent()     {}
func (KeyPressEvent) isEvent()  {}

// Loop is the I/O Loop of §4.5/§5: a single-threaded multiplex over
// the PTY and the window's event source. Go has no direct analogue of
// a blocking select(2) across heterogeneous descriptors, so the PTY's
// blocking Read is pushed onto a buffered channel by a dedicated
// reader goroutine whose only job is that translation (§9 "byte-wise
// strategy"); every mutation of Buffer Manager state still happens on
// the Loop's own goroutine, preserving the "readers run strictly
// after writers on the same turn" guarantee of §5.
type Loop struct {
	Buf       *Buffer
	Parser    *Parser
	PTY       PTY
	Events    <-chan Event
	Renderer  Renderer
	Clipboard Clipboard
	Metrics   Metrics

	// Resize is invoked whenever a ResizeEvent changes (cols, rows),
	// so the caller can forward the new size to the PTY (TIOCSWINSZ).
	Resize func(cols, rows int)

	// ScrollLines is how many rows a Shift+Up/Down keypress scrolls the
	// viewport by (config.Config.MouseScrollLines). Zero means 1.
	ScrollLines int

	selecting bool
}

const ptyReadSize = 1024

// Run drains PTY bytes and window events until the context is
// cancelled or the PTY read errors (child exit or fatal read
// failure, §7). It returns nil on context cancellation, on PTY EOF, or
// when the event channel is closed, and the read error otherwise.
func (l *Loop) Run(ctx context.Context) error {
	ptyCh := make(chan []byte, 16)
	errCh := make(chan error, 1)

	go func() {
		buf := make([]byte, ptyReadSize)
		for {
			n, err := l.PTY.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				ptyCh <- chunk
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case data := <-ptyCh:
			l.Parser.Feed(data)
			l.draw()
		case ev, ok := <-l.Events:
			if !ok {
				return nil
			}
			l.handleEvent(ev)
			l.draw()
		}
	}
}

func (l *Loop) draw() {
	if l.Renderer != nil {
		l.Renderer.Draw(l.Buf)
	}
}

func (l *Loop) write(p []byte) {
	if len(p) == 0 {
		return
	}
	l.PTY.Write(p)
}

func (l *Loop) handleEvent(ev Event) {
	switch e := ev.(type) {
	case ExposeEvent:
		// Repaint only; handled by the draw() after this returns.
	case ResizeEvent:
		cols, rows := l.gridSize(e.Width, e.Height)
		l.Buf.Resize(rows, cols)
		if l.Resize != nil {
			l.Resize(cols, rows)
		}
	case ButtonEvent:
		l.handleButton(e)
	case MotionEvent:
		l.handleMotion(e)
	case PasteEvent:
		l.write(e.Data)
	case KeyPressEvent:
		l.handleKey(e.Key)
	}
}

func (l *Loop) gridSize(width, height int) (cols, rows int) {
	fw, fh := l.Metrics.FontWidth, l.Metrics.FontHeight
	if fw <= 0 {
		fw = 1
	}
	if fh <= 0 {
		fh = 1
	}
	cols = (width - 2*l.Metrics.Border) / fw
	rows = (height - 2*l.Metrics.Border) / fh
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// pixelToGrid implements §4.3 steps 1-2.
func (l *Loop) pixelToGrid(px, py int) (col, row int) {
	fw, fh := l.Metrics.FontWidth, l.Metrics.FontHeight
	if fw <= 0 {
		fw = 1
	}
	if fh <= 0 {
		fh = 1
	}
	col = (px - l.Metrics.Border) / fw
	row = (py - l.Metrics.Border) / fh
	return col, row
}

func (l *Loop) handleButton(e ButtonEvent) {
	enabled, mode := l.Buf.MouseMode()
	col, row := l.pixelToGrid(e.X, e.Y)

	switch e.Button {
	case MousePress:
		vrow := l.Buf.VirtualRow(row)
		l.Buf.BeginSelection(vrow, col)
		l.selecting = true
		if bytes := EncodeMouse(MousePress, mode, enabled, col, vrow-l.Buf.ScrollbackLen()-l.Buf.ScrollOffset()); bytes != nil {
			l.write(bytes)
		}
	case MouseRelease:
		if l.selecting {
			l.selecting = false
			text := l.Buf.EndSelection()
			if l.Clipboard != nil && text != "" {
				l.Clipboard.Copy(text)
			}
		}
		sel := l.Buf.Selection()
		mrow := sel.EndRow - l.Buf.ScrollbackLen() - l.Buf.ScrollOffset()
		if bytes := EncodeMouse(MouseRelease, mode, enabled, sel.EndCol, mrow); bytes != nil {
			l.write(bytes)
		}
	}
}

func (l *Loop) handleMotion(e MotionEvent) {
	if !l.selecting {
		return
	}
	col, row := l.pixelToGrid(e.X, e.Y)
	vrow := l.Buf.VirtualRow(row)
	l.Buf.UpdateSelection(vrow, col)

	enabled, mode := l.Buf.MouseMode()
	mrow := vrow - l.Buf.ScrollbackLen() - l.Buf.ScrollOffset()
	if bytes := EncodeMouse(MouseMotion, mode, enabled, col, mrow); bytes != nil {
		l.write(bytes)
	}
}

func (l *Loop) handleKey(ev KeyEvent) {
	result := EncodeKey(ev)
	switch {
	case result.RequestCopy:
		if l.Clipboard != nil {
			l.Clipboard.Copy(l.Buf.LinearizeSelection())
		}
	case result.RequestPaste:
		if l.Clipboard != nil {
			l.Clipboard.RequestPaste()
		}
	case result.ScrollByLines != 0:
		lines := l.ScrollLines
		if lines <= 0 {
			lines = 1
		}
		l.Buf.ScrollViewport(result.ScrollByLines * lines)
	default:
		l.write(result.PTYBytes)
	}
}
