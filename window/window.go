// Package window is the concrete Window/Surface Adapter (§4.7): it
// owns the GLFW window and OpenGL context, and translates GLFW
// callbacks into core.Event values on the I/O Loop's event channel.
package window

import (
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/raventerm/raventerm/internal/core"
)

func init() {
	// GLFW callbacks must run on the thread that created the window.
	runtime.LockOSThread()
}

// Config configures the window at creation time.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig is the teacher's startup geometry.
func DefaultConfig() Config {
	return Config{Width: 900, Height: 600, Title: "Raven Terminal"}
}

// Window wraps a GLFW window and feeds core.Event values to a channel
// the I/O Loop reads from.
type Window struct {
	glfw   *glfw.Window
	events chan core.Event

	border int
}

// New creates a GLFW window with a 4.1 core OpenGL context, sets the
// application icon, and wires its callbacks to emit core.Event values
// on the returned Window's Events() channel (grounded on teacher's
// src/window/window.go NewWindow plus main.go's callback wiring).
func New(cfg Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHintString(glfw.X11ClassName, "raventerm")
	glfw.WindowHintString(glfw.X11InstanceName, "raventerm")

	glfwWin, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	glfwWin.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfwWin.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("init gl: %w", err)
	}
	glfw.SwapInterval(1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if icons := renderIconSizes(); len(icons) > 0 {
		glfwWin.SetIcon(icons)
	}

	w := &Window{
		glfw:   glfwWin,
		events: make(chan core.Event, 64),
		border: 0,
	}
	w.wireCallbacks()
	return w, nil
}

// Events is the channel the I/O Loop reads window events from.
func (w *Window) Events() <-chan core.Event { return w.events }

// GLFW exposes the underlying window for main.go's render-loop driver.
func (w *Window) GLFW() *glfw.Window { return w.glfw }

func (w *Window) wireCallbacks() {
	w.glfw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.send(core.ResizeEvent{Width: width, Height: height})
	})

	w.glfw.SetCharCallback(func(_ *glfw.Window, char rune) {
		buf := make([]byte, 4)
		n := encodeRune(buf, char)
		w.send(core.KeyPressEvent{Key: core.KeyEvent{UTF8: buf[:n]}})
	})

	w.glfw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		ev, ok := translateKey(key, mods)
		if !ok {
			return
		}
		w.send(core.KeyPressEvent{Key: ev})
	})

	w.glfw.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		x, y := w.glfw.GetCursorPos()
		var b core.MouseButton
		switch action {
		case glfw.Press:
			b = core.MousePress
		case glfw.Release:
			b = core.MouseRelease
		default:
			return
		}
		w.send(core.ButtonEvent{Button: b, X: int(x), Y: int(y)})
	})

	w.glfw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.send(core.MotionEvent{X: int(x), Y: int(y)})
	})
}

func (w *Window) send(ev core.Event) {
	select {
	case w.events <- ev:
	default:
		// Drop rather than block the GLFW callback thread; the I/O
		// Loop drains faster than pointer motion typically arrives.
	}
}

// Copy puts text on the system clipboard (core.Clipboard).
func (w *Window) Copy(text string) { glfw.SetClipboardString(text) }

// RequestPaste delivers the clipboard contents as a PasteEvent, since
// GLFW's clipboard read is synchronous but the I/O Loop only consumes
// events from its channel (core.Clipboard).
func (w *Window) RequestPaste() {
	if text := glfw.GetClipboardString(); text != "" {
		w.send(core.PasteEvent{Data: []byte(text)})
	}
}

// PollEvents pumps the GLFW event queue; call once per Loop iteration
// from main.go's driver goroutine (GLFW calls must stay on the thread
// that created the window, per the init() LockOSThread above).
func PollEvents() { glfw.PollEvents() }

// Destroy releases the GLFW window and terminates GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// translateKey maps a GLFW key + modifiers to a core.KeyEvent,
// recognizing only the keys §4.4's Input Encoder understands
// (grounded on teacher's keybindings.TranslateKey, narrowed to the
// encoder's vocabulary since core.EncodeKey owns the byte sequences).
func translateKey(key glfw.Key, mods glfw.ModifierKey) (core.KeyEvent, bool) {
	ctrl := mods&glfw.ModControl != 0
	shift := mods&glfw.ModShift != 0

	switch key {
	case glfw.KeyUp:
		return core.KeyEvent{Key: core.KeyUp, Shift: shift}, true
	case glfw.KeyDown:
		return core.KeyEvent{Key: core.KeyDown, Shift: shift}, true
	case glfw.KeyRight:
		return core.KeyEvent{Key: core.KeyRight, Shift: shift}, true
	case glfw.KeyLeft:
		return core.KeyEvent{Key: core.KeyLeft, Shift: shift}, true
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return core.KeyEvent{Key: core.KeyReturn}, true
	case glfw.KeyBackspace:
		return core.KeyEvent{Key: core.KeyBackspace}, true
	case glfw.KeyTab:
		return core.KeyEvent{Key: core.KeyTab}, true
	case glfw.KeyC:
		if ctrl && shift {
			return core.KeyEvent{Key: core.KeyCtrlShiftC}, true
		}
		if ctrl {
			return core.KeyEvent{Key: core.KeyCtrlC}, true
		}
	case glfw.KeyV:
		if ctrl && shift {
			return core.KeyEvent{Key: core.KeyCtrlShiftV}, true
		}
		if ctrl {
			return core.KeyEvent{Key: core.KeyCtrlV}, true
		}
	}
	return core.KeyEvent{}, false
}

func encodeRune(buf []byte, r rune) int {
	if r < 0x80 {
		buf[0] = byte(r)
		return 1
	}
	if r < 0x800 {
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	}
	if r < 0x10000 {
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	}
	buf[0] = byte(0xF0 | (r >> 18))
	buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
	buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
	buf[3] = byte(0x80 | (r & 0x3F))
	return 4
}

// iconSVG is a minimal monochrome glyph rendered as the window icon.
// The teacher embeds a designed SVG asset via go:embed; that binary
// asset wasn't part of the retrieved snapshot, so this is an inline
// placeholder that still exercises the same oksvg/rasterx rendering
// path (see DESIGN.md).
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect width="64" height="64" rx="8" fill="#0d101a"/>
  <rect x="12" y="14" width="40" height="28" rx="2" fill="#74b6ff"/>
  <rect x="16" y="44" width="32" height="6" rx="2" fill="#a2e0c7"/>
</svg>`

func renderIconSizes() []image.Image {
	var icons []image.Image
	for _, size := range []int{16, 32, 48, 64, 128} {
		if img := renderSVGToSize(iconSVG, size); img != nil {
			icons = append(icons, img)
		}
	}
	return icons
}

func renderSVGToSize(svgData string, size int) image.Image {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svgData))
	if err != nil {
		return nil
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	rasterizer := rasterx.NewDasher(size, size, scanner)
	icon.Draw(rasterizer, 1.0)
	return rgba
}
