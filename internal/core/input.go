package core

import "fmt"

// KeyEvent mirrors the window collaborator's KeyPress event (§6):
// a decoded keysym identifier, modifier flags, and any UTF-8 bytes
// the window toolkit already resolved for a plain keystroke.
type KeyEvent struct {
	Key   Key
	Shift bool
	Ctrl  bool
	UTF8  []byte
}

// Key enumerates the non-printable keys the Input Encoder recognizes
// (§4.4). Printable keys are carried via KeyEvent.UTF8 instead.
type Key int

const (
	KeyNone Key = iota
	KeyReturn
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyCtrlC
	KeyCtrlV
	KeyCtrlShiftC
	KeyCtrlShiftV
)

// EncodeResult is what the Input Encoder produces for one event: bytes
// to write to the PTY, and/or a side effect the caller (I/O Loop) must
// perform (clipboard copy/paste request, viewport scroll).
type EncodeResult struct {
	PTYBytes      []byte
	RequestCopy   bool
	RequestPaste  bool
	ScrollByLines int // non-zero for Shift+Up/Down
}

// EncodeKey implements the keyboard half of §4.4. The caller is
// expected to have already matched Ctrl+Shift+C / Ctrl+Shift+V /
// Shift+Up / Shift+Down into the event's Key field, since those never
// produce PTY bytes.
func EncodeKey(ev KeyEvent) EncodeResult {
	switch ev.Key {
	case KeyCtrlShiftC:
		return EncodeResult{RequestCopy: true}
	case KeyCtrlShiftV:
		return EncodeResult{RequestPaste: true}
	case KeyCtrlV:
		return EncodeResult{RequestPaste: true}
	case KeyCtrlC:
		return EncodeResult{PTYBytes: []byte{0x03}}
	case KeyUp:
		if ev.Shift {
			return EncodeResult{ScrollByLines: -1}
		}
		return EncodeResult{PTYBytes: arrowSeq('A', false)}
	case KeyDown:
		if ev.Shift {
			return EncodeResult{ScrollByLines: 1}
		}
		return EncodeResult{PTYBytes: arrowSeq('B', false)}
	case KeyRight:
		return EncodeResult{PTYBytes: arrowSeq('C', ev.Shift)}
	case KeyLeft:
		return EncodeResult{PTYBytes: arrowSeq('D', ev.Shift)}
	case KeyReturn:
		return EncodeResult{PTYBytes: []byte("\r")}
	case KeyBackspace:
		return EncodeResult{PTYBytes: []byte("\b")}
	case KeyTab:
		return EncodeResult{PTYBytes: []byte("\t")}
	}
	if len(ev.UTF8) > 0 {
		return EncodeResult{PTYBytes: append([]byte(nil), ev.UTF8...)}
	}
	return EncodeResult{}
}

// arrowSeq builds "ESC [ dir" or, when shifted, "ESC [ 1 ; 2 dir" (§4.4).
func arrowSeq(dir byte, shift bool) []byte {
	if shift {
		return []byte{0x1b, '[', '1', ';', '2', dir}
	}
	return []byte{0x1b, '[', dir}
}

// MouseButton identifies which button a mouse event concerns.
type MouseButton int

const (
	MousePress MouseButton = iota
	MouseRelease
	MouseMotion
)

// EncodeMouse implements §4.4's mouse encoding table. row/col are the
// on-screen grid coordinates already mapped back from virtual space
// by the caller (row = virtualRow - scrollbackLen - scrollOffset, the
// inverse of Buffer.VirtualRow). It returns nil when the event type isn't
// enabled under the current mouse mode.
func EncodeMouse(event MouseButton, mode int, enabled bool, col, row int) []byte {
	if !enabled {
		return nil
	}
	switch event {
	case MousePress:
		if mode < 1000 {
			return nil
		}
		return []byte(fmt.Sprintf("\x1b[M %c%c", byte(col+1+32), byte(row+1+32)))
	case MouseRelease:
		if mode < 1000 {
			return nil
		}
		return []byte(fmt.Sprintf("\x1b[M!%c%c", byte(col+1+32), byte(row+1+32)))
	case MouseMotion:
		if mode < 1002 {
			return nil
		}
		return []byte(fmt.Sprintf("\x1b[M\"%c%c", byte(col+1+32), byte(row+1+32)))
	}
	return nil
}
